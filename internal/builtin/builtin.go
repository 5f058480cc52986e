// Package builtin contains the standard Cascade operation catalog: invoice
// retrieval, filtering and summarization, grouping and date-range selection,
// arithmetic, string and time helpers, email validation and delivery, JSON
// file persistence, currency conversion, JSON transformation, and expression
// evaluation.
package builtin

import (
	"time"

	"github.com/tombee/cascade/internal/operation"
)

// Config carries the injectable edges of the catalog. Zero value gives
// wall-clock time, a time-seeded random source, and a mailer that logs
// instead of delivering.
type Config struct {
	// Now supplies the current time; nil means time.Now.
	Now func() time.Time
	// RandomSeed seeds generate_random_number; 0 seeds from the clock.
	RandomSeed int64
	// Mailer delivers send_email messages; nil means LogMailer.
	Mailer Mailer
	// DataDir is where save_to_file and read_from_file keep their JSON
	// files; empty means "data" relative to the working directory.
	DataDir string
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Config) mailer() Mailer {
	if c.Mailer != nil {
		return c.Mailer
	}
	return &LogMailer{}
}

func (c Config) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return "data"
}

// Register adds the whole catalog to reg.
func Register(reg *operation.Registry, cfg Config) error {
	ops := []operation.Definition{
		getInvoices(),
		filterInvoicesByAmount(),
		summarizeInvoices(),
		calculateTotal(),
		groupByField(),
		filterByDateRange(),
		saveToFile(cfg),
		readFromFile(cfg),
		convertCurrency(),
		addNumbers(),
		checkPrime(),
		generateRandomNumber(cfg),
		uppercaseString(),
		getCurrentTime(cfg),
		validateEmail(),
		sendEmail(cfg),
		generateID(),
		transformJSON(),
		evaluate(),
	}
	for _, def := range ops {
		if err := reg.Register(operation.NewFunc(def)); err != nil {
			return err
		}
	}
	return nil
}
