// Package router maps mascotctl commands onto console routes and applies
// the session guard before a command runs.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/spf13/cobra"
)

const annotationKey = "mascotctl/route"

// ErrNotLoggedIn is returned when a protected command runs without a usable session.
var ErrNotLoggedIn = errors.New("not logged in; run `mascotctl auth login`")

// ErrSessionExpired is returned when the server rejected the credential mid-command.
var ErrSessionExpired = errors.New("session expired; run `mascotctl auth login`")

// Route annotates a command with the console route it stands for.
// Placeholders {0}, {1}, ... are replaced by the command's positional args.
func Route(path string) map[string]string {
	return map[string]string{annotationKey: path}
}

// Resolve returns the route of cmd or its nearest annotated ancestor.
// Commands without a route (help, completion, auth housekeeping) skip the guard.
func Resolve(cmd *cobra.Command, args []string) (string, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		tmpl, ok := c.Annotations[annotationKey]
		if !ok {
			continue
		}
		path := tmpl
		for i, arg := range args {
			path = strings.ReplaceAll(path, "{"+strconv.Itoa(i)+"}", url.PathEscape(arg))
		}
		return path, true
	}
	return "", false
}

// Enforce resolves the session for path and turns the guard decision into
// an error the CLI can print.
func Enforce(ctx context.Context, session *sdk.Session, path string) error {
	decision := session.Navigate(ctx, path)
	switch decision.Action {
	case sdk.ActionRender:
		return nil
	case sdk.ActionRedirect:
		if ctx.Err() != nil {
			return fmt.Errorf("session check interrupted: %w", ctx.Err())
		}
		return ErrNotLoggedIn
	default:
		return fmt.Errorf("session for %s is still resolving", path)
	}
}

// Explain rewrites authentication failures from API calls into actionable
// messages. Other errors are returned unchanged.
func Explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sdk.ErrUnauthorized):
		return ErrSessionExpired
	case errors.Is(err, sdk.ErrUnauthenticated):
		return ErrNotLoggedIn
	}
	return err
}
