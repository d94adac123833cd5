package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/i18n"
)

const extractWidth = 60

type searchOptions struct {
	Term     string
	Topic    string
	Language string
	Pages    int
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Print articles for a query or topic without the TUI",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return errors.New("search takes at most one term")
		}
		if len(args) == 0 && searchOpts.Topic == "" {
			return errors.New("a search term or --topic is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := searchOpts
		if len(args) == 1 {
			opts.Term = args[0]
		}

		fetcher, m := newFetcher(cfg)
		manager := feed.NewManager(fetcher, cfg)
		manager.SetMetrics(m)
		return runSearch(cmd.Context(), manager, cmd.OutOrStdout(), opts)
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchOpts.Pages, "pages", "n", 1, "number of pages to load")
	searchCmd.Flags().StringVarP(&searchOpts.Language, "lang", "l", "", "article language (zh or en)")
	searchCmd.Flags().StringVarP(&searchOpts.Topic, "topic", "t", "", "topic key or label instead of a term")
}

// runSearch drives the feed controller the way the feed view does, one
// continuation per extra page, and prints what it collected.
func runSearch(ctx context.Context, m *feed.Manager, w io.Writer, opts searchOptions) error {
	if opts.Language != "" {
		lang, err := i18n.ParseLanguage(opts.Language)
		if err != nil {
			return err
		}
		m.SetLanguage(lang)
	}
	lang := m.Language()

	term := strings.Join(strings.Fields(opts.Term), " ")
	if opts.Topic != "" {
		topic, ok := i18n.ParseTopic(opts.Topic)
		if !ok {
			topic, ok = i18n.TopicForLabel(opts.Topic)
		}
		if !ok {
			return fmt.Errorf("unknown topic %q", opts.Topic)
		}
		term = topic.Label(lang)
	}
	if term == "" {
		return errors.New("empty search term")
	}

	m.Reset(term)
	if err := m.Load(ctx, term, false); err != nil {
		return err
	}
	for page := 1; page < opts.Pages && m.CanContinue(); page++ {
		if err := m.Load(ctx, term, true); err != nil {
			return err
		}
	}

	renderResults(w, lang, m.State())
	return nil
}

func renderResults(w io.Writer, lang i18n.Language, st feed.State) {
	if len(st.Articles) == 0 {
		fmt.Fprintln(w, i18n.T(lang, "noResults"))
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(st.Articles))
	for i, a := range st.Articles {
		extract := strings.Join(strings.Fields(a.Extract), " ")
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Title,
			runewidth.Truncate(extract, extractWidth, "…"),
			a.Permalink(lang),
		})
	}

	table.Header([]string{"#", "Title", "Extract", "URL"})
	_ = table.Bulk(rows)
	_ = table.Render()

	status := fmt.Sprintf("%d %s", len(st.Articles), i18n.T(lang, "status.articles"))
	if !st.HasMore {
		status += " · " + i18n.T(lang, "status.end")
	}
	fmt.Fprintln(w, status)
}
