package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
)

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "movies",
		Short: "List cataloged movies with their best file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				movies, err := store.AllMovies(cmd.Context())
				if err != nil {
					return err
				}
				if len(movies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty; run a scan first.")
					return nil
				}

				rows := make([][]string, 0, len(movies))
				for _, movie := range movies {
					files, err := store.FilesForMovie(cmd.Context(), movie.ID)
					if err != nil {
						return err
					}

					yearLabel := "-"
					if movie.Year != nil {
						yearLabel = strconv.Itoa(*movie.Year)
					}
					resolution := "-"
					var size int64
					verify := "-"
					for _, file := range files {
						size += file.SizeBytes
						if resolution == "-" && file.ResolutionClass != "" {
							resolution = file.ResolutionClass
						}
						if file.Scanned() {
							verify = string(file.VerifyStatus)
						}
					}

					rows = append(rows, []string{
						displayTitle(movie.Title),
						yearLabel,
						strconv.Itoa(len(files)),
						resolution,
						humanSize(size),
						verify,
					})
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
					{name: "Title"},
					{name: "Year", numeric: true},
					{name: "Files", numeric: true},
					{name: "Resolution"},
					{name: "Size", numeric: true},
					{name: "Verify"},
				}, rows))
				return nil
			})
		},
	}
}

// displayTitle tidies shouty or scene-style folder titles for table output.
// Titles with ordinary mixed casing pass through untouched.
func displayTitle(title string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		default:
			cleaned.WriteRune(r)
			prevSpace = false
		}
	}
	result := strings.TrimSpace(cleaned.String())
	if result == "" {
		return title
	}
	if result == strings.ToUpper(result) || result == strings.ToLower(result) {
		return cases.Title(language.Und).String(strings.ToLower(result))
	}
	return result
}
