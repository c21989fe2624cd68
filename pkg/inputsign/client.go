package inputsign

import (
	"context"
	"fmt"
)

// Client provides a high-level API for signing many transaction inputs.
type Client struct {
	signer *Signer
	parser JobParser
	config BatchConfig
	raw    bool
}

// NewClient creates a new client with default settings.
func NewClient() *Client {
	return &Client{
		signer: NewSigner(),
		parser: &JSONParser{},
		config: DefaultBatchConfig(),
	}
}

// WithParser sets a custom job parser.
func (c *Client) WithParser(parser JobParser) *Client {
	c.parser = parser
	return c
}

// WithBatchConfig sets the batch configuration.
func (c *Client) WithBatchConfig(config BatchConfig) *Client {
	c.config = config
	return c
}

// WithSigner sets the signer used for every job.
func (c *Client) WithSigner(signer *Signer) *Client {
	c.signer = signer
	return c
}

// WithRaw selects bare DER signatures instead of endorsements.
func (c *Client) WithRaw(raw bool) *Client {
	c.raw = raw
	return c
}

// SignFile signs every job in a file.
//
// Args:
//   - ctx: Context for cancellation.
//   - source: Path to the job file (JSON or CSV, depending on the parser).
//
// Returns:
//   - One result per job in file order, or an error if the file could not
//     be parsed. Failed jobs are reported in their result.
func (c *Client) SignFile(ctx context.Context, source string) ([]BatchResult, error) {
	jobs, err := c.parser.ParseJobs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jobs: %w", err)
	}
	return c.SignJobs(ctx, jobs)
}

// SignJobs signs in-memory jobs. Use this when the requests were built by
// the caller rather than read from a file.
func (c *Client) SignJobs(ctx context.Context, jobs []*Request) ([]BatchResult, error) {
	for i, job := range jobs {
		if job == nil {
			return nil, fmt.Errorf("job %d is nil", i)
		}
	}
	return signBatch(ctx, c.signer, jobs, c.config, c.raw), nil
}
