package site

import (
	"encoding/xml"
	"fmt"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// buildSitemap lists the home page, the resources page when present and
// every grant page
func buildSitemap(siteURL string, slugs []string, hasResources bool) ([]byte, error) {
	set := urlset{Xmlns: sitemapNS}
	set.URLs = append(set.URLs, sitemapURL{Loc: siteURL + "/", ChangeFreq: "daily", Priority: "1.0"})
	if hasResources {
		set.URLs = append(set.URLs, sitemapURL{Loc: siteURL + "/resources.html", ChangeFreq: "weekly", Priority: "0.9"})
	}
	for _, s := range slugs {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/grants/%s.html", siteURL, s),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func buildRobots(siteURL string) []byte {
	return []byte("User-agent: *\nAllow: /\n\nSitemap: " + siteURL + "/sitemap.xml\n")
}
