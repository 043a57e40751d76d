package dataprep

import (
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// Option is a functional option for configuring a Cipher or a Preprocessor.
type Option func(*config)

// config holds configuration options. Cipher reads the compression fields;
// Preprocessor reads all of them.
type config struct {
	compressionThreshold int
	compressionDisabled  bool

	keyDir     string
	httpClient *retryablehttp.Client
	logger     *log.Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		compressionThreshold: defaultCompressionThreshold,
		keyDir:               ".",
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithCompressionThreshold sets the minimum plaintext size in bytes before
// compression is attempted. Default is 1024 (1KB).
func WithCompressionThreshold(bytes int) Option {
	return func(c *config) {
		c.compressionThreshold = bytes
	}
}

// WithCompressionDisabled disables compression entirely.
// Use this for data that is already compressed or won't benefit from compression.
func WithCompressionDisabled() Option {
	return func(c *config) {
		c.compressionDisabled = true
	}
}

// WithKeyDir sets the directory persisted column keys are written to and read
// from. Default is the working directory.
func WithKeyDir(dir string) Option {
	return func(c *config) {
		c.keyDir = dir
	}
}

// WithHTTPClient sets the client used to import URL sources.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithLogger sets the logger a Preprocessor writes to. Default is the logrus
// standard logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
