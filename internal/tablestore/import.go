package tablestore

import (
	"context"
	"database/sql"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/textproc"
)

// Import writes one exported legacy page into the structured backend in a
// single transaction. Importing the same page twice converges on the same
// rows, so an interrupted migration batch can safely be replayed.
func (s *Store) Import(ctx context.Context, exp *model.ExportedPage) error {
	// Re-run the text pipeline rather than trusting exported term sets;
	// both backends must agree on tokenization anyway.
	page, terms := textproc.PageFromContent(model.PageContent{
		URL:         exp.Page.FullURL,
		Title:       exp.Page.FullTitle,
		FullText:    exp.Page.Text,
		Description: exp.Page.Description,
		Lang:        exp.Page.Lang,
	})
	if page.Screenshot == "" {
		page.Screenshot = exp.Page.Screenshot
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertPage(ctx, tx, page); err != nil {
			return err
		}

		termSets := []struct {
			table string
			set   textproc.TermSet
		}{
			{termTable, terms.Terms},
			{titleTermTable, terms.TitleTerms},
			{urlTermTable, terms.URLTerms},
		}
		for _, ts := range termSets {
			if err := insertTerms(ctx, tx, ts.table, page.URL, ts.set); err != nil {
				return err
			}
		}

		for _, visit := range exp.Visits {
			if err := insertVisit(ctx, tx, page.URL, visit.Time, visit.VisitInteraction, true); err != nil {
				return err
			}
		}
		if exp.Bookmark != 0 {
			if err := upsertBookmark(ctx, tx, page.URL, exp.Bookmark); err != nil {
				return err
			}
		}
		for _, name := range exp.Tags {
			if err := insertTag(ctx, tx, page.URL, name); err != nil {
				return err
			}
		}
		if exp.FavIcon != "" {
			if err := upsertFavIcon(ctx, tx, page.Hostname, exp.FavIcon); err != nil {
				return err
			}
		}
		return nil
	})
}
