package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

const (
	// MaxEligibilityRunes bounds eligibility snippets
	MaxEligibilityRunes = 200

	// MaxSummaryRunes bounds summaries
	MaxSummaryRunes = 200

	minMetaDescription = 20
	minParagraph       = 40
)

// Ordered: the first pattern that matches supplies the deadline
var deadlinePatterns = []*regexp.Regexp{
	// "Deadline: April 22, 2026"
	regexp.MustCompile(`(?i)(?:Deadline|Due Date|Due|Closes|Closing Date)[:\s]*([A-Z][a-z]+\s\d{1,2},?\s\d{4})`),
	// a date later on the same line as a submission keyword
	regexp.MustCompile(`(?i)(?:submit|application|due|deadline).*?([A-Z][a-z]+\s\d{1,2},?\s\d{4})`),
	regexp.MustCompile(`(?i)(?:Deadline|Due)[:\s]*(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)(?:Deadline|Due)[:\s]*(\d{4}-\d{2}-\d{2})`),
}

var rollingPattern = regexp.MustCompile(`(?i)\b(?:rolling|open|ongoing|no deadline|continuous)\b`)

// Comma-grouped amounts first so "$1,500" is read whole
var amountPattern = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})+|\d+)`)

var eligibilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Eligib(?:le|ility)|Who (?:Can|May|Should) Apply)[:\s]*([^\n.]{10,150})`),
	regexp.MustCompile(`(?i)(?:Open to|Available to|Applicants must be)[:\s]*([^\n.]{10,150})`),
	regexp.MustCompile(`(?i)(?:must be enrolled|must be a|candidates should)[^\n.]{5,120}`),
}

// Paragraphs starting with these are site chrome, not descriptions
var chromePrefixes = []string{"Cookie", "Privacy", "©", "Skip"}

var amountPrinter = message.NewPrinter(language.English)

// Deadline returns the first deadline found in text, "Rolling" for
// open-ended windows, or "" when nothing matches
func Deadline(text string) string {
	for _, re := range deadlinePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if rollingPattern.MatchString(text) {
		return grant.Rolling
	}
	return ""
}

// Amount returns the largest dollar figure in text with thousands
// separators, e.g. "25,000", or "" when text has none
func Amount(text string) grant.Amount {
	largest := -1
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		if n > largest {
			largest = n
		}
	}
	if largest <= 0 {
		return ""
	}
	return grant.Amount(amountPrinter.Sprintf("%d", largest))
}

// Eligibility returns the first eligibility snippet found in text
func Eligibility(text string) string {
	for _, re := range eligibilityPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		s := m[0]
		if len(m) > 1 {
			s = m[1]
		}
		return truncateRunes(strings.TrimSpace(s), MaxEligibilityRunes)
	}
	return ""
}

// Summary returns the page description: the meta description, then the
// Open Graph description, then the first substantial paragraph
func Summary(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		content, ok := doc.Find(sel).First().Attr("content")
		if ok && len(content) > minMetaDescription {
			return truncateRunes(strings.TrimSpace(content), MaxSummaryRunes)
		}
	}

	var summary string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) <= minParagraph || hasChromePrefix(text) {
			return true
		}
		summary = truncateRunes(text, MaxSummaryRunes)
		return false
	})
	return summary
}

func hasChromePrefix(s string) bool {
	for _, prefix := range chromePrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
