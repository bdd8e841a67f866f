package common

// Coalesce picks the first value that is set, so optional configuration can fall back to a default:
// Coalesce(cfg.Title, "Oxy Viewer"), Coalesce(o.FitRadius, defaultFitRadius).
// It returns the zero value when none is set.
func Coalesce[T comparable](values ...T) T {
	var unset T
	for _, v := range values {
		if v != unset {
			return v
		}
	}
	return unset
}
