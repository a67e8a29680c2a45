package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for email and password and hands them to the reconciler,
// which reports the outcome through the notifier. The password is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	if v := a.core.View(ctx); v.User != nil {
		fmt.Fprintf(a.out, "Already logged in as %s; use logout first.\n", v.User.Email)
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.core.Login(ctx, models.LoginRequest{Identifier: email, Secret: password})
}

func (a *App) Logout(ctx context.Context) error {
	return a.core.Logout(ctx)
}

func (a *App) Whoami(ctx context.Context) error {
	v := a.core.View(ctx)

	switch v.State {
	case models.StateLoggedIn:
		u := v.User
		fmt.Fprintf(a.out, "%s <%s>\n", u.DisplayName(), u.Email)
		fmt.Fprintf(a.out, "  id:     %s\n", u.ID)
		fmt.Fprintf(a.out, "  role:   %s\n", u.Role)
		fmt.Fprintf(a.out, "  active: %t\n", u.Active)
	case models.StateUnknown:
		if v.IsLoading {
			fmt.Fprintln(a.out, "Session found, checking it with the server...")
		} else {
			fmt.Fprintln(a.out, "Session found, profile not verified yet.")
		}
	default:
		fmt.Fprintln(a.out, "Not logged in.")
	}
	return nil
}

// Status prints the derived view, the route, connectivity and the access
// token's expiry as claimed by the token itself.
func (a *App) Status(ctx context.Context) error {
	v := a.core.View(ctx)

	fmt.Fprintf(a.out, "state:         %s\n", v.State)
	fmt.Fprintf(a.out, "authenticated: %t\n", v.IsAuthenticated)
	fmt.Fprintf(a.out, "loading:       %t\n", v.IsLoading)
	fmt.Fprintf(a.out, "route:         %s\n", a.nav.Current())

	mode := a.getMode()
	if mode == "" {
		mode = "unknown"
	}
	fmt.Fprintf(a.out, "server:        %s (%s, %s)\n", a.config.ServerEndpointAddr, a.config.Transport, mode)

	pair, ok, err := a.tokens.Get(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(a.out, "credentials:   unreadable (%v)\n", err)
	case !ok:
		fmt.Fprintln(a.out, "credentials:   none")
	default:
		if exp, ok := pair.AccessExpiry(); ok {
			fmt.Fprintf(a.out, "credentials:   access token expires %s (in %s)\n",
				exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
		} else {
			fmt.Fprintln(a.out, "credentials:   present")
		}
	}
	return nil
}

// Refresh re-verifies the session now and reports the result. This is the
// only place verification failures are shown.
func (a *App) Refresh(ctx context.Context) error {
	v, err := a.core.Verify(ctx)
	if err != nil {
		fmt.Fprintln(a.out, verificationMessage(err))
		return err
	}
	if v.User != nil {
		fmt.Fprintf(a.out, "Session verified for %s.\n", v.User.Email)
	} else {
		fmt.Fprintln(a.out, "Not logged in.")
	}
	return nil
}

// Open navigates to one of the web console's sections through the route
// guard.
func (a *App) Open(ctx context.Context, section string) error {
	switch guard(a.core.View(ctx)) {
	case guardWait:
		fmt.Fprintln(a.out, "Checking session, try again in a moment.")
	case guardRedirect:
		a.redirectToLogin()
	default:
		a.nav.Push("/" + section)
		fmt.Fprintf(a.out, "%s: not available in the console.\n", section)
	}
	return nil
}

func (a *App) Back(ctx context.Context) error {
	if !a.nav.Back() {
		fmt.Fprintln(a.out, "Nowhere to go back to.")
	}
	return nil
}

// Unknown answers a command the console does not know. Logged-out users
// are sent to the login route, like any other guarded route.
func (a *App) Unknown(ctx context.Context, cmd string) {
	if guard(a.core.View(ctx)) == guardRedirect {
		a.redirectToLogin()
		return
	}
	fmt.Fprintln(a.out, "Unknown command:", cmd)
}
