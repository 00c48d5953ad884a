// Package site renders the static GrantFlow site.
//
// A Renderer turns curated grants and resources into Documents: the index,
// one detail page and (when the deadline is a real date) one calendar file
// per grant, the resources page, deadlines.ics, sitemap.xml and robots.txt.
// Rendering is pure; Write puts the documents on disk.
//
// Usage:
//
//	pages, err := site.NewPages(grants, slug.Assign(grants, slug.Options{}))
//	if err != nil {
//	    return err
//	}
//	docs, err := site.NewRenderer(cfg, time.Now()).Render(pages, resources)
//	if err != nil {
//	    return err
//	}
//	err = site.Write(cfg.Site.OutputDir, docs)
package site
