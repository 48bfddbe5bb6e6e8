package agentfs

import "github.com/mwantia/agentfs/log"

type FileSystemOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool
	JSONLog       bool
	Logger        *log.Logger // Overrides every other log option when set.
}

type FileSystemOption func(*FileSystemOptions) error

func newDefaultFileSystemOptions() *FileSystemOptions {
	return &FileSystemOptions{
		LogLevel: log.Info,
	}
}

// applyLogConfig seeds the options from the log section of a config file.
func (opts *FileSystemOptions) applyLogConfig(cfg LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	opts.LogLevel = level
	opts.LogFile = cfg.File
	opts.NoTerminalLog = cfg.NoTerminal
	opts.JSONLog = cfg.JSON
	return nil
}

func (opts *FileSystemOptions) logger() *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}

	logger := log.NewLogger("agentfs", opts.LogLevel, opts.LogFile, opts.NoTerminalLog)
	logger.JSON = opts.JSONLog
	return logger
}

func WithLogLevel(logLevel log.LogLevel) FileSystemOption {
	return func(opts *FileSystemOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithNoTerminalLog() FileSystemOption {
	return func(opts *FileSystemOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) FileSystemOption {
	return func(opts *FileSystemOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithJSONLog() FileSystemOption {
	return func(opts *FileSystemOptions) error {
		opts.JSONLog = true
		return nil
	}
}

// WithLogger uses an existing logger instead of building one.
func WithLogger(logger *log.Logger) FileSystemOption {
	return func(opts *FileSystemOptions) error {
		opts.Logger = logger
		return nil
	}
}
