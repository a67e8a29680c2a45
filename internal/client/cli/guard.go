package cli

import "github.com/dmitrijs2005/gophadmin/internal/client/models"

// Sections of the web console that sit behind the route guard. None of them
// has a console implementation.
var sections = map[string]struct{}{
	"users":         {},
	"content":       {},
	"finance":       {},
	"games":         {},
	"notifications": {},
}

type guardDecision int

const (
	guardAllow guardDecision = iota
	// guardWait: the first session check is still running.
	guardWait
	guardRedirect
)

func guard(v models.AuthView) guardDecision {
	switch {
	case v.IsLoading:
		return guardWait
	case !v.IsAuthenticated:
		return guardRedirect
	default:
		return guardAllow
	}
}
