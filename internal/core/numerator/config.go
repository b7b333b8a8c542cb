package numerator

// Strategy selects how sequence values are reserved.
type Strategy int

const (
	// StrategyStrict takes one value per call from the counter row. No gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize values at once and serves them from memory.
	// A restart loses the unused part of the range.
	StrategyCached
)

// Options tune a single GetNextNumber call. Nil means DefaultOptions.
type Options struct {
	Strategy  Strategy
	RangeSize int64
}

// DefaultOptions is strict, gapless numbering.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// ResetPeriod decides when a sequence starts over at 1.
type ResetPeriod string

const (
	ResetYearly  ResetPeriod = "year"
	ResetMonthly ResetPeriod = "month"
	ResetNever   ResetPeriod = "never"
)

// Config describes one numbered series, such as sales.
type Config struct {
	Prefix      string
	IncludeYear bool
	PadWidth    int // 0 means 5
	ResetPeriod ResetPeriod
}

// DefaultConfig yields PREFIX-YYYY-NNNNN numbers restarting every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYearly,
	}
}
