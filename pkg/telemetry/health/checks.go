package health

import (
	"context"
	"errors"
)

// APICounter reports the number of apis a catalog serves.
type APICounter interface {
	Len() int
}

// CatalogCheck fails while the catalog holds no apis. A gateway without
// apis answers every request with 404, which is never the intended state
// after startup.
func CatalogCheck(c APICounter) CheckFunc {
	return func(context.Context) error {
		if c.Len() == 0 {
			return errors.New("no apis loaded")
		}
		return nil
	}
}
