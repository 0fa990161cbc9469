package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/forPelevin/wandlung/internal/listing"
	"github.com/forPelevin/wandlung/internal/pages"
)

// pageErr marks errors the page already reported to the user.
func pageErr(err error) error {
	if err == nil || errors.Is(err, pages.ErrNoDialog) || errors.Is(err, pages.ErrSuperseded) {
		return err
	}
	return reportedError{err: err}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func footer[T any](w io.Writer, v listing.View[T], noun string) {
	if v.Total == 0 {
		fmt.Fprintf(w, "no %s\n", noun)
		return
	}
	fmt.Fprintf(w, "page %d of %d (%d %s)\n", v.Page, v.Pages, v.Total, noun)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subtitle id %q", s)
	}
	return id, nil
}

func mask(secret *string) string {
	if secret == nil || *secret == "" {
		return "(not set)"
	}
	s := *secret
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
