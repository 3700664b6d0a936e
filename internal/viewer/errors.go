package viewer

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory = errors.New("category not registered")
	ErrSurfaceMissing  = errors.New("ui surface element missing")
	ErrAlreadyLoaded   = errors.New("map data already loaded")
	ErrNoFeature       = errors.New("no feature at point")
)

// FetchError：协作方查询失败，携带操作名与目标
type FetchError struct {
	Op       string
	Category Category
	ID       int64
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Category != "":
		return fmt.Sprintf("%s(%s): %v", e.Op, e.Category, e.Err)
	case e.ID != 0:
		return fmt.Sprintf("%s(%d): %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
