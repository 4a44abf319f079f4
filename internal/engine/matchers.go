package engine

// Matcher is one named pattern in an ordered fallback chain. Plugins that
// recognize several overlapping line shapes declare them as a Matcher list
// tried in priority order, which keeps the fallback policy auditable and
// testable in isolation.
type Matcher[T any] struct {
	Name  string
	Match func(line string) (T, bool)
}

// FirstMatch tries the matchers in order and returns the first hit along
// with the name of the matcher that produced it.
func FirstMatch[T any](matchers []Matcher[T], line string) (T, string, bool) {
	for _, m := range matchers {
		if v, ok := m.Match(line); ok {
			return v, m.Name, true
		}
	}
	var zero T
	return zero, "", false
}
