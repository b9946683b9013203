package domain

// Result is the normalized outcome of a remote call. Backends signal
// success through status codes, body flags or both; adapters fold those
// into OK so callers inspect a single field.
type Result[T any] struct {
	OK    bool
	Value T
	Err   error
}

// Ok returns a successful result.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail returns a failed result. A nil err is replaced by ErrRemote.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrRemote
	}
	return Result[T]{Err: err}
}

// Unwrap returns the value and error in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	if !r.OK {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

// Empty is the value of results that carry nothing on success.
type Empty struct{}

// LoginResponse is the normalized login payload.
type LoginResponse struct {
	Token        string
	RefreshToken string
	User         *User
}

// TokenPair is returned by a token refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
