package parquet

import (
	"fmt"
	"strings"

	"github.com/kodeshop/parquet/format"
)

const (
	DefaultRowGroupSize   = 4096
	DefaultPageSize       = 8192
	DefaultUseDataPageV2  = false
	DefaultCompression    = format.Uncompressed
)

// WriterConfig carries the configuration options recognized by a Writer
// (spec.md §6, "Writer configuration options").
//
// WriterConfig implements WriterOption so it can be passed directly to
// NewWriter, for example:
//
//	w := parquet.NewWriter(output, schema, &parquet.WriterConfig{
//		RowGroupSize: 1000,
//	})
type WriterConfig struct {
	// RowGroupSize is the row count at which appendRow flushes the
	// current row buffer into a row group. Defaults to 4096.
	RowGroupSize int
	// PageSize is advisory: this implementation always emits exactly one
	// data page per column chunk, but the option is retained for
	// compatibility with callers that configure it. Defaults to 8192.
	PageSize int
	// UseDataPageV2 selects the DATA_PAGE_V2 header flavor and disables
	// the RLE envelope on repetition/definition levels. Defaults to false.
	UseDataPageV2 bool
	// Compression is the file-level default codec. A field's own
	// Compression (set on its FieldDef) overrides this default for that
	// column. Defaults to UNCOMPRESSED.
	Compression format.CompressionCodec
	// CreatedBy overrides the "created_by" string written to the footer.
	// Defaults to "github.com/kodeshop/parquet version 1 (build <uuid>)"
	// with a fresh uuid.
	CreatedBy string
	// KeyValueMetadata is additional key/value metadata to embed in the
	// footer, on top of anything added later via Writer.SetMetadata.
	KeyValueMetadata map[string]string
}

// DefaultWriterConfig returns a new WriterConfig initialized with the
// default writer configuration.
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		RowGroupSize:  DefaultRowGroupSize,
		PageSize:      DefaultPageSize,
		UseDataPageV2: DefaultUseDataPageV2,
		Compression:   DefaultCompression,
	}
}

// Apply applies the given list of options to c.
func (c *WriterConfig) Apply(options ...WriterOption) {
	for _, opt := range options {
		opt.ConfigureWriter(c)
	}
}

// ConfigureWriter applies configuration options from c to config.
func (c *WriterConfig) ConfigureWriter(config *WriterConfig) {
	keyValueMetadata := config.KeyValueMetadata
	if len(c.KeyValueMetadata) > 0 {
		if keyValueMetadata == nil {
			keyValueMetadata = make(map[string]string, len(c.KeyValueMetadata))
		}
		for k, v := range c.KeyValueMetadata {
			keyValueMetadata[k] = v
		}
	}
	*config = WriterConfig{
		RowGroupSize:     coalesceInt(c.RowGroupSize, config.RowGroupSize),
		PageSize:         coalesceInt(c.PageSize, config.PageSize),
		UseDataPageV2:    config.UseDataPageV2 || c.UseDataPageV2,
		Compression:      coalesceCompressionCodec(c.Compression, config.Compression),
		CreatedBy:        coalesceString(c.CreatedBy, config.CreatedBy),
		KeyValueMetadata: keyValueMetadata,
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *WriterConfig) Validate() error {
	const baseName = "parquet.(*WriterConfig)."
	return errorInvalidConfiguration(
		validatePositiveInt(baseName+"RowGroupSize", c.RowGroupSize),
		validatePositiveInt(baseName+"PageSize", c.PageSize),
	)
}

// ReaderConfig carries the configuration options recognized by a Reader.
// This core has no reader-side options beyond column projection (which is
// passed directly to GetCursor), but the type is kept symmetric with
// WriterConfig so future options have somewhere to live.
type ReaderConfig struct{}

// DefaultReaderConfig returns a new ReaderConfig initialized with the
// default reader configuration.
func DefaultReaderConfig() *ReaderConfig { return &ReaderConfig{} }

// Apply applies the given list of options to c.
func (c *ReaderConfig) Apply(options ...ReaderOption) {
	for _, opt := range options {
		opt.ConfigureReader(c)
	}
}

// ConfigureReader applies configuration options from c to config.
func (c *ReaderConfig) ConfigureReader(config *ReaderConfig) {}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *ReaderConfig) Validate() error { return nil }

// WriterOption is an interface implemented by types that carry
// configuration options for parquet writers.
type WriterOption interface {
	ConfigureWriter(*WriterConfig)
}

// ReaderOption is an interface implemented by types that carry
// configuration options for parquet readers.
type ReaderOption interface {
	ConfigureReader(*ReaderConfig)
}

// RowGroupSize creates a configuration option which sets the row count at
// which a writer flushes its row buffer into a row group.
//
// Defaults to 4096.
func RowGroupSize(rows int) WriterOption {
	return writerOption(func(config *WriterConfig) { config.RowGroupSize = rows })
}

// PageSize creates a configuration option which sets the advisory column
// value count per page.
//
// Defaults to 8192.
func PageSize(values int) WriterOption {
	return writerOption(func(config *WriterConfig) { config.PageSize = values })
}

// UseDataPageV2 creates a configuration option which selects the
// DATA_PAGE_V2 header flavor.
//
// Defaults to false.
func UseDataPageV2(enabled bool) WriterOption {
	return writerOption(func(config *WriterConfig) { config.UseDataPageV2 = enabled })
}

// Compression creates a configuration option which sets the file-level
// default compression codec. A field's own Compression, set on its
// FieldDef, overrides this default for that column.
//
// Defaults to UNCOMPRESSED.
func Compression(codec format.CompressionCodec) WriterOption {
	return writerOption(func(config *WriterConfig) { config.Compression = codec })
}

// CreatedBy creates a configuration option which overrides the
// "created_by" string written to the footer.
func CreatedBy(createdBy string) WriterOption {
	return writerOption(func(config *WriterConfig) { config.CreatedBy = createdBy })
}

// KeyValueMetadata creates a configuration option which adds key/value
// metadata to the footer of the file.
//
// This option is additive: it may be used multiple times to add more than
// one key/value pair. Keys are assumed unique; the last value set wins,
// mirroring Writer.SetMetadata.
func KeyValueMetadata(key, value string) WriterOption {
	return writerOption(func(config *WriterConfig) {
		if config.KeyValueMetadata == nil {
			config.KeyValueMetadata = map[string]string{key: value}
		} else {
			config.KeyValueMetadata[key] = value
		}
	})
}

type writerOption func(*WriterConfig)

func (opt writerOption) ConfigureWriter(config *WriterConfig) { opt(config) }

type readerOption func(*ReaderConfig)

func (opt readerOption) ConfigureReader(config *ReaderConfig) { opt(config) }

func coalesceInt(i1, i2 int) int {
	if i1 != 0 {
		return i1
	}
	return i2
}

func coalesceString(s1, s2 string) string {
	if s1 != "" {
		return s1
	}
	return s2
}

func coalesceCompressionCodec(c1, c2 format.CompressionCodec) format.CompressionCodec {
	if c1 != format.Uncompressed {
		return c1
	}
	return c2
}

func validatePositiveInt(optionName string, optionValue int) error {
	if optionValue > 0 {
		return nil
	}
	return errorInvalidOptionValue(optionName, optionValue)
}

func errorInvalidOptionValue(optionName string, optionValue interface{}) error {
	return fmt.Errorf("invalid option value: %s: %v", optionName, optionValue)
}

func errorInvalidConfiguration(reasons ...error) error {
	var err *invalidConfiguration
	for _, reason := range reasons {
		if reason != nil {
			if err == nil {
				err = new(invalidConfiguration)
			}
			err.reasons = append(err.reasons, reason)
		}
	}
	if err != nil {
		return err
	}
	return nil
}

type invalidConfiguration struct {
	reasons []error
}

func (err *invalidConfiguration) Error() string {
	b := new(strings.Builder)
	for _, reason := range err.reasons {
		b.WriteString(reason.Error())
		b.WriteString("\n")
	}
	s := b.String()
	if s != "" {
		s = s[:len(s)-1]
	}
	return s
}

var (
	_ WriterOption = (*WriterConfig)(nil)
	_ ReaderOption = (*ReaderConfig)(nil)
)
