package links

import (
	"context"
	"errors"
	"net"
	"testing"
)

const modulesPage = `<div id="context_modules">
  <div class="context_module" aria-label="Week 1">
    <div class="ig-header"><span class="name">Week 1: Introductions</span></div>
    <ul>
      <li><a class="ig-title" href="/courses/101/modules/items/1">Lecture 1</a></li>
      <li><a class="ig-title" href="/courses/101/modules/items/2">Reading list</a></li>
      <li><a class="ig-title" href="/courses/101/assignments/9">Not a module item</a></li>
    </ul>
  </div>
  <div class="context_module" aria-label="Week 2 fallback">
    <div class="ig-header"></div>
    <ul>
      <li><a class="ig-title" href="https://canvas.example.edu/courses/101/modules/items/3">Lecture 2</a></li>
    </ul>
  </div>
</div>`

func TestParseModuleItems(t *testing.T) {
	items := ParseModuleItems(modulesPage, "https://canvas.example.edu/courses/101/modules")

	want := []ModuleItem{
		{ModuleName: "Week 1: Introductions", Text: "Lecture 1", Href: "https://canvas.example.edu/courses/101/modules/items/1"},
		{ModuleName: "Week 1: Introductions", Text: "Reading list", Href: "https://canvas.example.edu/courses/101/modules/items/2"},
		{ModuleName: "Week 2 fallback", Text: "Lecture 2", Href: "https://canvas.example.edu/courses/101/modules/items/3"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("item[%d] = %+v, want %+v", i, items[i], w)
		}
	}
}

type fakeVisitor struct {
	pages map[string]string
}

func (v *fakeVisitor) VisitHTML(_ context.Context, url string) (string, string, error) {
	doc, ok := v.pages[url]
	if !ok {
		return "", "", errors.New("page unavailable")
	}
	return doc, "title", nil
}

func TestCrawlModules(t *testing.T) {
	visitor := &fakeVisitor{pages: map[string]string{
		"https://canvas.example.edu/courses/101/modules/items/1": `<iframe src="https://cdnapisec.kaltura.com/p/1/embed?entry=x" title="Player"></iframe>`,
		"https://canvas.example.edu/courses/101/modules/items/3": `<a href="https://university.yuja.com/V/Video?v=7">Recording</a>
			 <a href="https://example.com/notes.pdf">Notes</a>`,
		// item 2 missing: visit fails, crawl continues
	}}

	got := CrawlModules(context.Background(), visitor, modulesPage, "https://canvas.example.edu/courses/101/modules")

	if len(got) != 2 {
		t.Fatalf("got %d video links, want 2: %+v", len(got), got)
	}

	if got[0].VideoProvider != "kaltura" || got[0].ModuleName != "Week 1: Introductions" || got[0].ItemText != "Lecture 1" {
		t.Errorf("first link = %+v", got[0])
	}
	if got[1].VideoProvider != "yuja" || got[1].ModuleName != "Week 2 fallback" || got[1].ItemText != "Lecture 2" {
		t.Errorf("second link = %+v", got[1])
	}
}

type flakyVisitor struct {
	fakeVisitor
	calls    map[string]int
	failOnce map[string]bool
}

func (v *flakyVisitor) VisitHTML(ctx context.Context, url string) (string, string, error) {
	if v.calls == nil {
		v.calls = make(map[string]int)
	}
	v.calls[url]++
	if v.failOnce[url] && v.calls[url] == 1 {
		return "", "", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
	}
	return v.fakeVisitor.VisitHTML(ctx, url)
}

func TestCrawlModules_RetriesTransientVisitFailure(t *testing.T) {
	item1 := "https://canvas.example.edu/courses/101/modules/items/1"
	visitor := &flakyVisitor{
		fakeVisitor: fakeVisitor{pages: map[string]string{
			item1: `<iframe src="https://cdnapisec.kaltura.com/p/1/embed?entry=x" title="Player"></iframe>`,
		}},
		failOnce: map[string]bool{item1: true},
	}

	got := CrawlModules(context.Background(), visitor, modulesPage, "https://canvas.example.edu/courses/101/modules")

	if len(got) != 1 || got[0].VideoProvider != "kaltura" {
		t.Fatalf("got %+v, want the kaltura link despite the first visit failing", got)
	}
	if visitor.calls[item1] != 2 {
		t.Errorf("item 1 visited %d times, want 2 (one retry)", visitor.calls[item1])
	}
	// plain errors are not retried: items 2 and 3 have no page and fail once
	if n := visitor.calls["https://canvas.example.edu/courses/101/modules/items/2"]; n != 1 {
		t.Errorf("item 2 visited %d times, want 1", n)
	}
}

func TestCrawlModules_DeduplicatesAcrossItems(t *testing.T) {
	page := `<iframe src="https://cdnapisec.kaltura.com/p/1/embed" title="Player"></iframe>`
	visitor := &fakeVisitor{pages: map[string]string{
		"https://canvas.example.edu/courses/101/modules/items/1": page,
		"https://canvas.example.edu/courses/101/modules/items/2": page,
		"https://canvas.example.edu/courses/101/modules/items/3": page,
	}}

	got := CrawlModules(context.Background(), visitor, modulesPage, "https://canvas.example.edu/courses/101/modules")
	if len(got) != 1 {
		t.Fatalf("got %d links, want 1 after dedup: %+v", len(got), got)
	}
}
