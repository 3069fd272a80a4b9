package resolver

import (
	"context"
	"testing"

	"github.com/tenderdesk/parser/pkg/dom"
	"github.com/tenderdesk/parser/pkg/models"
)

// stubFetcher serves firm-profile pages by URL.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url, waitForSelector string) *models.FetchResult {
	s.calls = append(s.calls, url)
	html, ok := s.pages[url]
	if !ok {
		return &models.FetchResult{Source: models.SourceDirect}
	}
	return &models.FetchResult{HTML: html, StatusCode: 200, Source: models.SourceDirect}
}

const tenderPageURL = "https://www.b2b-center.ru/market/view.html?id=3670464"

func TestResolve_NameAndLink(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		wantName string
		wantLink string
	}{
		{
			name: "firm link in next cell",
			html: `<table><tr>
				<td>Организатор:</td>
				<td><a href="/firms/12345">ООО Ромашка</a></td>
			</tr></table>`,
			wantName: "ООО Ромашка",
			wantLink: "/firms/12345",
		},
		{
			name: "plain text in next cell",
			html: `<table><tr>
				<td>Заказчик:</td>
				<td>АО Вектор</td>
			</tr></table>`,
			wantName: "АО Вектор",
			wantLink: "",
		},
		{
			name: "english label",
			html: `<table><tr>
				<td>Customer:</td>
				<td>ACME Co</td>
			</tr></table>`,
			wantName: "ACME Co",
			wantLink: "",
		},
		{
			name: "link from later label beats text from earlier label",
			html: `<div>
				<table><tr>
					<td>Организатор:</td>
					<td>ООО Первая Компания</td>
				</tr></table>
			</div>
			<div>
				<table><tr>
					<td>Заказчик:</td>
					<td><a href="/company/77">ПАО Звезда</a></td>
				</tr></table>
			</div>`,
			wantName: "ПАО Звезда",
			wantLink: "/company/77",
		},
		{
			name: "status noise rejected",
			html: `<table><tr>
				<td>Организатор:</td>
				<td>Опубликована 01.02.2024</td>
			</tr></table>`,
			wantName: "",
			wantLink: "",
		},
		{
			name: "too short name rejected",
			html: `<table><tr>
				<td>Организатор:</td>
				<td>АО</td>
			</tr></table>`,
			wantName: "",
			wantLink: "",
		},
		{
			name: "label inside long prose is ignored",
			html: `<p>` +
				`Организатор процедуры оставляет за собой право отклонить любые заявки участников ` +
				`в любое время до подведения итогов, о чем участники уведомляются отдельно.` +
				`</p>`,
			wantName: "",
			wantLink: "",
		},
		{
			name: "anchor without text uses title attribute",
			html: `<table><tr>
				<td>Организатор:</td>
				<td><a href="/firms/9" title="ООО Гамма"><img src="logo.png"></a></td>
			</tr></table>`,
			wantName: "ООО Гамма",
			wantLink: "/firms/9",
		},
		{
			name:     "no labels at all",
			html:     `<p>страница без нужных меток</p>`,
			wantName: "",
			wantLink: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&stubFetcher{})
			org := r.Resolve(context.Background(), dom.Parse(tc.html), tenderPageURL)
			if org.Name != tc.wantName {
				t.Errorf("Name = %q, expected %q", org.Name, tc.wantName)
			}
			if org.Link != tc.wantLink {
				t.Errorf("Link = %q, expected %q", org.Link, tc.wantLink)
			}
		})
	}
}

func TestResolve_NilDocument(t *testing.T) {
	r := New(&stubFetcher{})
	org := r.Resolve(context.Background(), nil, tenderPageURL)
	if org.Name != "" || org.Link != "" || org.INN != "" {
		t.Errorf("expected empty organizer, got %+v", org)
	}
}

func TestResolve_INNOnTenderPage(t *testing.T) {
	html := `<div class="organizer-information">
		<table><tr>
			<td>Организатор:</td>
			<td>ООО Ромашка</td>
		</tr></table>
		<div><span>ИНН</span><span>7707083893</span></div>
	</div>`

	fetcher := &stubFetcher{}
	r := New(fetcher)
	org := r.Resolve(context.Background(), dom.Parse(html), tenderPageURL)

	if org.Name != "ООО Ромашка" {
		t.Fatalf("Name = %q", org.Name)
	}
	if org.INN != "7707083893" {
		t.Errorf("INN = %q, expected 7707083893", org.INN)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("no firm page should be fetched when INN is on the tender page, got %v", fetcher.calls)
	}
}

func TestResolve_INNFromFirmPage(t *testing.T) {
	tender := `<table><tr>
		<td>Организатор:</td>
		<td><a href="/firms/12345">ООО Ромашка</a></td>
	</tr></table>`

	testCases := []struct {
		name     string
		firmHTML string
		wantINN  string
	}{
		{
			name: "table cell after label",
			firmHTML: `<table><tr>
				<td>ИНН</td><td>7707083893</td>
			</tr></table>`,
			wantINN: "7707083893",
		},
		{
			name: "table cell with formatted digits",
			firmHTML: `<table><tr>
				<td>ИНН:</td><td> 7707 083 893 </td>
			</tr></table>`,
			wantINN: "7707083893",
		},
		{
			name:     "label and digits in one element",
			firmHTML: `<div><p>ИНН: 7707083893, КПП: 770701001</p></div>`,
			wantINN:  "7707083893",
		},
		{
			name: "next-data json island",
			firmHTML: `<html><body>
				<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"company":{"title":"ООО Ромашка","inn":"7707083893"}}}}</script>
			</body></html>`,
			wantINN: "7707083893",
		},
		{
			name: "inline script object",
			firmHTML: `<html><body>
				<script>window.firm = {"name":"ООО Ромашка","inn":"7707083893"};</script>
			</body></html>`,
			wantINN: "7707083893",
		},
		{
			name:     "nothing anywhere",
			firmHTML: `<html><body><p>профиль без реквизитов</p></body></html>`,
			wantINN:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{pages: map[string]string{
				"https://www.b2b-center.ru/firms/12345": tc.firmHTML,
			}}
			r := New(fetcher)
			org := r.Resolve(context.Background(), dom.Parse(tender), tenderPageURL)

			if org.INN != tc.wantINN {
				t.Errorf("INN = %q, expected %q", org.INN, tc.wantINN)
			}
			if len(fetcher.calls) != 1 {
				t.Fatalf("firm page fetched %d times, expected 1", len(fetcher.calls))
			}
		})
	}
}

func TestAbsolutizeFirmLink(t *testing.T) {
	testCases := []struct {
		name     string
		link     string
		pageURL  string
		expected string
	}{
		{
			name:     "absolute link untouched",
			link:     "https://example.com/firms/1",
			pageURL:  tenderPageURL,
			expected: "https://example.com/firms/1",
		},
		{
			name:     "relative link against page host",
			link:     "/firms/12345",
			pageURL:  "https://www.tender.pro/market/view?id=1",
			expected: "https://www.tender.pro/firms/12345",
		},
		{
			name:     "unparseable page url falls back",
			link:     "/firms/12345",
			pageURL:  "::broken::",
			expected: "https://www.b2b-center.ru/firms/12345",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := absolutizeFirmLink(tc.link, tc.pageURL); got != tc.expected {
				t.Errorf("absolutizeFirmLink() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestIsFirmLink(t *testing.T) {
	testCases := []struct {
		href     string
		expected bool
	}{
		{"/firms/12345", true},
		{"/company/77", true},
		{"/org/abc", true},
		{"index.php?action=company&id=5", true},
		{"/app/next/firms/12345", true},
		{"/market/view.html?id=3670464", false},
		{"", false},
		{"#", false},
	}

	for _, tc := range testCases {
		t.Run(tc.href, func(t *testing.T) {
			if got := IsFirmLink(tc.href); got != tc.expected {
				t.Errorf("IsFirmLink(%q) = %v, expected %v", tc.href, got, tc.expected)
			}
		})
	}
}
