package fleet

// Flag is the obsolescence classification of a model. Values mirror
// the curated table ("Sim"/"Não") so that the table round-trips
// unchanged through a run.
type Flag string

// Obsolescence flag values.
const (
	FlagObsolete    Flag = "Sim"
	FlagNotObsolete Flag = "Não"
)

// String returns the string representation of the flag.
func (f Flag) String() string {
	return string(f)
}

// ClassificationEntry maps one model name to its obsolescence flag.
// The table is curated by hand and append-only from the engine's point
// of view: once an entry exists its value never changes between runs
// without an explicit table edit.
type ClassificationEntry struct {
	Model    string `yaml:"model"`
	Obsolete Flag   `yaml:"obsolete"`
}
