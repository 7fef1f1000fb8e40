// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deptofdefense/bashfs/pkg/bash"
	"github.com/deptofdefense/bashfs/pkg/fs"
	"github.com/deptofdefense/bashfs/pkg/lfs"
	"github.com/deptofdefense/bashfs/pkg/log"
	"github.com/deptofdefense/bashfs/pkg/s3fs"
)

const (
	BashfsVersion = "1.0.0"
)

// errFalse is returned when a query answers false.  It sets the exit status
// without printing a message.
var errFalse = errors.New("false")

const (
	flagRootPath = "root"
	flagMemory   = "memory"
	//
	flagLogPath = "log"
	flagLogPerm = "log-perm"
	//
	flagDirectory = "dir"
	//
	flagAWSPartition          = "aws-partition"
	flagAWSProfile            = "aws-profile"
	flagAWSDefaultRegion      = "aws-default-region"
	flagAWSRegion             = "aws-region"
	flagAWSAccessKeyID        = "aws-access-key-id"
	flagAWSSecretAccessKey    = "aws-secret-access-key"
	flagAWSSessionToken       = "aws-session-token"
	flagAWSInsecureSkipVerify = "aws-insecure-skip-verify"
	flagAWSS3Endpoint         = "aws-s3-endpoint"
	flagAWSS3UsePathStyle     = "aws-s3-use-path-style"
)

func initFlags(flag *pflag.FlagSet) {
	flag.StringP(flagRootPath, "r", "", "root of the file system, a local directory or s3://bucket/prefix.  Defaults to the working directory.")
	flag.Bool(flagMemory, false, "use a volatile in-memory file system")
	flag.StringP(flagLogPath, "l", "-", "path to the log output.  Defaults to stderr.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	initAWSFlags(flag)
}

func initAWSFlags(flag *pflag.FlagSet) {
	flag.String(flagAWSPartition, "", "AWS Partition")
	flag.String(flagAWSProfile, "", "AWS Profile")
	flag.String(flagAWSDefaultRegion, "", "AWS Default Region")
	flag.String(flagAWSRegion, "", "AWS Region (overrides default region)")
	flag.String(flagAWSAccessKeyID, "", "AWS Access Key ID")
	flag.String(flagAWSSecretAccessKey, "", "AWS Secret Access Key")
	flag.String(flagAWSSessionToken, "", "AWS Session Token")
	flag.Bool(flagAWSInsecureSkipVerify, false, "Skip verification of AWS TLS certificate")
	flag.String(flagAWSS3Endpoint, "", "AWS S3 Endpoint URL")
	flag.Bool(flagAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing)")
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	return v, nil
}

func initS3Client(v *viper.Viper) *s3.Client {
	accessKeyID := v.GetString(flagAWSAccessKeyID)
	secretAccessKey := v.GetString(flagAWSSecretAccessKey)
	sessionToken := v.GetString(flagAWSSessionToken)
	usePathStyle := v.GetBool(flagAWSS3UsePathStyle)

	region := v.GetString(flagAWSRegion)
	if len(region) == 0 {
		if defaultRegion := v.GetString(flagAWSDefaultRegion); len(defaultRegion) > 0 {
			region = defaultRegion
		}
	}

	config := aws.Config{
		RetryMaxAttempts: 3,
		Region:           region,
	}

	partition := v.GetString(flagAWSPartition)
	if len(partition) == 0 {
		partition = "aws"
	}

	if e := v.GetString(flagAWSS3Endpoint); len(e) > 0 {
		config.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(func(service string, region string, options ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				endpoint := aws.Endpoint{
					PartitionID:   partition,
					URL:           e,
					SigningRegion: region,
				}
				return endpoint, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
	}

	if len(accessKeyID) > 0 && len(secretAccessKey) > 0 {
		config.Credentials = credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			sessionToken)
	}

	if v.GetBool(flagAWSInsecureSkipVerify) {
		config.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
}

func checkConfig(v *viper.Viper) error {
	rootPath := v.GetString(flagRootPath)
	if v.GetBool(flagMemory) && len(rootPath) > 0 {
		return fmt.Errorf("root path %q cannot be used with an in-memory file system", rootPath)
	}
	if strings.HasPrefix(rootPath, "s3://") {
		if bucket, _ := parseS3Path(rootPath); len(bucket) == 0 {
			return fmt.Errorf("bucket is missing from root path %q", rootPath)
		}
	}
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	return nil
}

func parseS3Path(rootPath string) (string, string) {
	rootParts := strings.Split(strings.TrimPrefix(rootPath, "s3://"), "/")
	return rootParts[0], strings.Join(rootParts[1:], "/")
}

func newTraceID() string {
	traceID, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return traceID.String()
}

func initLogger(path string, perm string) (*log.SimpleLogger, error) {

	if path == "-" {
		return log.NewSimpleLogger(os.Stderr), nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return log.NewSimpleLogger(f), nil
}

func initFileSystem(ctx context.Context, v *viper.Viper) fs.FileSystem {
	if v.GetBool(flagMemory) {
		return lfs.NewMemFileSystem()
	}
	rootPath := v.GetString(flagRootPath)
	if strings.HasPrefix(rootPath, "s3://") {
		bucket, prefix := parseS3Path(rootPath)
		s3Client := initS3Client(v)
		bucketCreationDate := time.Now()
		listBucketsOutput, err := s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
		if err == nil {
			for _, b := range listBucketsOutput.Buckets {
				if bucket == aws.ToString(b.Name) {
					bucketCreationDate = aws.ToTime(b.CreationDate)
					break
				}
			}
		}
		return s3fs.NewS3FileSystem(bucket, prefix, s3Client, bucketCreationDate)
	}
	if len(rootPath) > 0 {
		return lfs.NewLocalFileSystem(rootPath)
	}
	return lfs.NewOsFileSystem()
}

func initShell(cmd *cobra.Command) (*bash.Shell, error) {
	v, err := initViper(cmd)
	if err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if errConfig := checkConfig(v); errConfig != nil {
		return nil, errConfig
	}

	logger, err := initLogger(v.GetString(flagLogPath), v.GetString(flagLogPerm))
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}

	return bash.New(
		bash.WithFileSystem(initFileSystem(cmd.Context(), v)),
		bash.WithLogger(log.WithFields(logger, map[string]interface{}{
			"bashfs_trace_id": newTraceID(),
		})),
	), nil
}

// newCommand returns a command that runs f against a shell built from the
// command's flags.
func newCommand(use string, short string, args cobra.PositionalArgs, f func(ctx context.Context, s *bash.Shell, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:                   use,
		DisableFlagsInUseLine: true,
		Short:                 short,
		Args:                  args,
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := initShell(cmd)
			if err != nil {
				return err
			}
			return f(cmd.Context(), s, args)
		},
	}
}

func check(op string, o bash.Outcome) error {
	if o.OK() {
		return nil
	}
	return fmt.Errorf("%s: %w", op, o.Reason())
}

// exitStatus returns the process exit status for the error returned by a
// command.  A false answer exits 1 without a message.
func exitStatus(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errFalse) {
		return 1
	}
	_, _ = fmt.Fprintln(stderr, "bashfs: "+err.Error())
	_, _ = fmt.Fprintln(stderr, "Try bashfs --help for more information.")
	return 1
}

func readContent(args []string, stdin io.Reader) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(b), nil
}

func main() {

	rootCommand := &cobra.Command{
		Use:                   `bashfs [flags]`,
		DisableFlagsInUseLine: true,
		Short:                 "bashfs runs Bash-like file system operations against a local directory, memory, or Amazon S3.",
	}
	initFlags(rootCommand.PersistentFlags())

	mkdirCommand := newCommand(`mkdir PATH`, "create a directory and any missing parents", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("mkdir", s.Mkdir(ctx, args[0]))
	})

	rmCommand := newCommand(`rm PATH`, "remove a file", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("rm", s.Rm(ctx, args[0]))
	})

	rmdirCommand := newCommand(`rmdir PATH`, "remove an empty directory", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("rmdir", s.Rmdir(ctx, args[0]))
	})

	rmrCommand := newCommand(`rm-r PATH`, "remove a directory and its contents", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("rm-r", s.RmR(ctx, args[0]))
	})

	existsCommand := newCommand(`exists PATH`, "exit with status 0 if the path exists", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		if !s.PathExists(ctx, args[0]) {
			return errFalse
		}
		return nil
	})

	isEmptyCommand := newCommand(`is-empty PATH`, "exit with status 0 if the path is an empty directory", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		if !s.DirectoryIsEmpty(ctx, args[0]).OK() {
			return errFalse
		}
		return nil
	})

	mvCommand := newCommand(`mv SOURCE TARGET`, "move a file or directory", cobra.ExactArgs(2), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("mv", s.Mv(ctx, args[0], args[1]))
	})

	touchCommand := newCommand(`touch PATH`, "create an empty file, truncating any existing file", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		return check("touch", s.CreateFile(ctx, args[0]))
	})

	writeCommand := newCommand(`write PATH [TEXT]`, "write text, or stdin if no text is given, to a file", cobra.RangeArgs(1, 2), func(ctx context.Context, s *bash.Shell, args []string) error {
		content, err := readContent(args, os.Stdin)
		if err != nil {
			return err
		}
		return check("write", s.WriteFile(ctx, args[0], content))
	})

	appendCommand := newCommand(`append PATH [TEXT]`, "append text, or stdin if no text is given, to a file", cobra.RangeArgs(1, 2), func(ctx context.Context, s *bash.Shell, args []string) error {
		content, err := readContent(args, os.Stdin)
		if err != nil {
			return err
		}
		return check("append", s.WriteFileAppend(ctx, args[0], content))
	})

	catCommand := newCommand(`cat PATH`, "print the contents of a file", cobra.ExactArgs(1), func(ctx context.Context, s *bash.Shell, args []string) error {
		content, o := s.ReadFile(ctx, args[0])
		if err := check("cat", o); err != nil {
			return err
		}
		fmt.Print(content)
		return nil
	})

	runCommand := &cobra.Command{
		Use:                   `run [--dir DIR] PROGRAM [ARGS...]`,
		DisableFlagsInUseLine: true,
		Short:                 "run a program and exit with its exit code",
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := initShell(cmd)
			if err != nil {
				return err
			}
			if dir, _ := cmd.Flags().GetString(flagDirectory); len(dir) > 0 {
				if err := check("cd", s.Cd(cmd.Context(), dir)); err != nil {
					return err
				}
			}
			exitCode, o := s.RunCommand(cmd.Context(), args[0], args[1:]...)
			if !exitCode.Present {
				return check("run", o)
			}
			if exitCode.Code != 0 {
				os.Exit(exitCode.Code)
			}
			return nil
		},
	}
	runCommand.Flags().String(flagDirectory, "", "working directory for the program")
	runCommand.Flags().SetInterspersed(false)

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(BashfsVersion)
			return nil
		},
	}

	rootCommand.AddCommand(
		mkdirCommand,
		rmCommand,
		rmdirCommand,
		rmrCommand,
		existsCommand,
		isEmptyCommand,
		mvCommand,
		touchCommand,
		writeCommand,
		appendCommand,
		catCommand,
		runCommand,
		versionCommand,
	)

	if code := exitStatus(os.Stderr, rootCommand.Execute()); code != 0 {
		os.Exit(code)
	}
}
