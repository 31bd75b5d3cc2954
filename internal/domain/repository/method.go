package repository

// Method selects the bootstrap estimator.
type Method string

const (
	MethodLinear       Method = "linear"
	MethodCubicSpline  Method = "cubic-spline"
	MethodNelsonSiegel Method = "nelson-siegel"
)

// IsValidMethod returns true if m is a supported estimation method.
func IsValidMethod(m Method) bool {
	switch m {
	case MethodLinear, MethodCubicSpline, MethodNelsonSiegel:
		return true
	default:
		return false
	}
}

// DefaultMethod returns the default estimation method.
func DefaultMethod() Method { return MethodCubicSpline }

// NormalizeMethod converts raw string to a valid method (or default).
func NormalizeMethod(s string) Method {
	if s == "" {
		return DefaultMethod()
	}
	m := Method(s)
	if IsValidMethod(m) {
		return m
	}
	return DefaultMethod()
}
