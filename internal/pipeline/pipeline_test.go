package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"causemap/internal/extraction"
	"causemap/internal/fishbone"
	"causemap/internal/listmode"
	"causemap/internal/pipeline"
	"causemap/internal/review"
	"causemap/pkg/formatting"
	"causemap/pkg/lifecycle"
	"causemap/pkg/pagination"
	"causemap/pkg/storage"
)

type fakeLists struct {
	provisioned []string
	inserted    map[string][]listmode.Record
	insertErr   error
}

func newFakeLists() *fakeLists {
	return &fakeLists{inserted: make(map[string][]listmode.Record)}
}

func (f *fakeLists) Provision(_ context.Context, sessionID string) error {
	f.provisioned = append(f.provisioned, sessionID)
	return nil
}

func (f *fakeLists) Insert(_ context.Context, sessionID string, records []listmode.Record) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}
	f.inserted[sessionID] = append(f.inserted[sessionID], records...)
	return len(records), nil
}

func (f *fakeLists) DistinctCategories(_ context.Context, sessionID string) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, r := range f.inserted[sessionID] {
		if r.CategoryName != "" && !seen[r.CategoryName] {
			seen[r.CategoryName] = true
			categories = append(categories, r.CategoryName)
		}
	}
	return categories, nil
}

func (f *fakeLists) MaterializeViews(_ context.Context, sessionID string) ([]string, error) {
	seen := make(map[string]bool)
	var views []string
	for _, r := range f.inserted[sessionID] {
		sanitized := formatting.Sanitize(r.CategoryName)
		if sanitized == "" || seen[sanitized] {
			continue
		}
		seen[sanitized] = true
		views = append(views, "view_cat_"+sanitized)
	}
	return views, nil
}

func (f *fakeLists) Views(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeLists) Sessions(context.Context) ([]string, error) { return f.provisioned, nil }

func (f *fakeLists) Exists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeLists) FetchAll(_ context.Context, sessionID string) ([]listmode.Record, error) {
	return f.inserted[sessionID], nil
}

func (f *fakeLists) FetchAllSessions(context.Context) ([]listmode.SessionRecords, error) {
	return nil, nil
}

func (f *fakeLists) List(context.Context, string, pagination.PageRequest) (*pagination.PageResult[listmode.Record], error) {
	return nil, nil
}

func (f *fakeLists) Delete(context.Context, string) error { return nil }

type fakeFishbone struct {
	inserted []fishbone.Record
	comments map[string]string
}

func newFakeFishbone() *fakeFishbone {
	return &fakeFishbone{comments: make(map[string]string)}
}

func (f *fakeFishbone) Insert(_ context.Context, records []fishbone.Record) (int, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}
	f.inserted = append(f.inserted, records...)
	return len(records), nil
}

func (f *fakeFishbone) Sessions(context.Context) ([]string, error) { return nil, nil }

func (f *fakeFishbone) FetchSession(context.Context, string) ([]fishbone.Record, error) {
	return nil, nil
}

func (f *fakeFishbone) UpsertComment(_ context.Context, session, comment string) error {
	f.comments[session] = comment
	return nil
}

func (f *fakeFishbone) Comment(_ context.Context, session string) (string, error) {
	return f.comments[session], nil
}

func (f *fakeFishbone) DeleteSession(context.Context, string) error { return nil }

type fakeExtractor struct {
	flat    *extraction.FlatResult
	tree    *extraction.TreeResult
	flatErr error
	treeErr error
}

func (f *fakeExtractor) ExtractFlat(context.Context, extraction.Image) (*extraction.FlatResult, error) {
	return f.flat, f.flatErr
}

func (f *fakeExtractor) ExtractTree(context.Context, extraction.Image) (*extraction.TreeResult, error) {
	return f.tree, f.treeErr
}

type fakeArchive struct {
	blobs map[string][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{blobs: make(map[string][]byte)}
}

func (f *fakeArchive) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeArchive) Archive(_ context.Context, key string, data []byte, _ string) error {
	f.blobs[key] = data
	return nil
}

func (f *fakeArchive) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeArchive) Delete(_ context.Context, key string) error {
	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeArchive) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

func newRuntime(lists *fakeLists, fb *fakeFishbone, ex *fakeExtractor) *pipeline.Runtime {
	return &pipeline.Runtime{
		Lists:     lists,
		Fishbone:  fb,
		Extractor: ex,
		Reviews:   review.NewStore(time.Minute),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testImage() extraction.Image {
	return extraction.Image{Data: []byte("png"), MIME: "image/png"}
}

func TestStartFlat(t *testing.T) {
	t.Run("stages extracted items and diagram labels for review", func(t *testing.T) {
		lists := newFakeLists()
		lists.inserted["retail_review_2024"] = []listmode.Record{
			{Description: "prior", CategoryName: "Logistics"},
		}
		rt := newRuntime(lists, newFakeFishbone(), &fakeExtractor{
			flat: &extraction.FlatResult{
				ActivityName: "Audit",
				GroupName:    "GRP 3",
				Items: []extraction.FlatItem{
					{Description: "Late delivery"},
					{Description: "Damaged packaging"},
				},
			},
		})

		staged, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "Retail Review 2024",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartFlat() error = %v", err)
		}

		if staged.SessionID != "retail_review_2024" {
			t.Errorf("SessionID = %q, want retail_review_2024", staged.SessionID)
		}
		if staged.Stage != review.StageCategorize {
			t.Errorf("Stage = %q, want categorize", staged.Stage)
		}
		if staged.ActivityName != "Audit" {
			t.Errorf("ActivityName = %q, want Audit", staged.ActivityName)
		}
		if staged.GroupName != "GRP 3" {
			t.Errorf("GroupName = %q, want GRP 3", staged.GroupName)
		}
		if len(staged.Items) != 2 || !staged.Items[0].Include {
			t.Errorf("unexpected staged items: %+v", staged.Items)
		}
		if len(staged.Categories) != 1 || staged.Categories[0] != "Logistics" {
			t.Errorf("Categories = %v, want the session's existing categories", staged.Categories)
		}
		if len(lists.provisioned) != 1 || lists.provisioned[0] != "retail_review_2024" {
			t.Errorf("provisioned = %v", lists.provisioned)
		}
	})

	t.Run("rejects unusable session name", func(t *testing.T) {
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{})

		_, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "!!!",
			Image:       testImage(),
		})
		if !errors.Is(err, pipeline.ErrInvalidSession) {
			t.Errorf("StartFlat() error = %v, want ErrInvalidSession", err)
		}
	})

	t.Run("rejects empty image", func(t *testing.T) {
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{})

		_, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "retail",
		})
		if !errors.Is(err, pipeline.ErrEmptyImage) {
			t.Errorf("StartFlat() error = %v, want ErrEmptyImage", err)
		}
	})

	t.Run("propagates extraction failure", func(t *testing.T) {
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{
			flatErr: extraction.ErrMalformed,
		})

		_, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "retail",
			Image:       testImage(),
		})
		if !errors.Is(err, extraction.ErrMalformed) {
			t.Errorf("StartFlat() error = %v, want ErrMalformed", err)
		}
	})
}

func TestCompleteFlat(t *testing.T) {
	start := func(t *testing.T, lists *fakeLists, groupName string) (*pipeline.Runtime, *review.Review) {
		t.Helper()
		rt := newRuntime(lists, newFakeFishbone(), &fakeExtractor{
			flat: &extraction.FlatResult{
				ActivityName: "Audit",
				GroupName:    groupName,
				Items: []extraction.FlatItem{
					{Description: "Late delivery"},
					{Description: "Damaged packaging"},
				},
			},
		})
		staged, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "retail",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartFlat() error = %v", err)
		}
		return rt, staged
	}

	// reviewer output: every included item carries a category assignment
	categorized := func(staged *review.Review) []review.Item {
		items := append([]review.Item(nil), staged.Items...)
		items[0].Category = "Logistics"
		items[1].Category = "Quality"
		return items
	}

	t.Run("persists accepted items and materializes views", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "GRP 3")

		summary, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
			Attended: true,
		})
		if err != nil {
			t.Fatalf("CompleteFlat() error = %v", err)
		}

		if summary.Inserted != 2 {
			t.Errorf("Inserted = %d, want 2", summary.Inserted)
		}

		records := lists.inserted["retail"]
		for i, r := range records {
			if r.GroupNo != 3 {
				t.Errorf("records[%d].GroupNo = %d, want 3 derived from GRP 3", i, r.GroupNo)
			}
			if r.ActivityName != "Audit" {
				t.Errorf("records[%d].ActivityName = %q, want Audit", i, r.ActivityName)
			}
		}

		wantView := "view_cat_logistics"
		found := false
		for _, v := range summary.Views {
			if v == wantView {
				found = true
			}
		}
		if !found {
			t.Errorf("Views = %v, want to contain %q", summary.Views, wantView)
		}

		final, err := rt.Reviews.Get(staged.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if final.Stage != review.StageSaved {
			t.Errorf("Stage = %q, want saved", final.Stage)
		}
	})

	t.Run("submitted labels override the staged ones", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "GRP 3")

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID:     staged.ID,
			Items:        categorized(staged),
			ActivityName: "Corrected Audit",
			GroupName:    "GRP 12",
			Attended:     true,
		})
		if err != nil {
			t.Fatalf("CompleteFlat() error = %v", err)
		}

		record := lists.inserted["retail"][0]
		if record.GroupNo != 12 {
			t.Errorf("GroupNo = %d, want 12", record.GroupNo)
		}
		if record.ActivityName != "Corrected Audit" {
			t.Errorf("ActivityName = %q", record.ActivityName)
		}
	})

	t.Run("excluded items are not persisted", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "GRP 3")

		items := categorized(staged)
		items[1].Include = false

		summary, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    items,
		})
		if err != nil {
			t.Fatalf("CompleteFlat() error = %v", err)
		}
		if summary.Inserted != 1 {
			t.Errorf("Inserted = %d, want 1", summary.Inserted)
		}
	})

	t.Run("uncategorized item blocks the save", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "GRP 3")

		items := categorized(staged)
		items[1].Category = ""

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    items,
		})
		if !errors.Is(err, review.ErrEmptyCategory) {
			t.Errorf("CompleteFlat() error = %v, want ErrEmptyCategory", err)
		}
		if len(lists.inserted["retail"]) != 0 {
			t.Error("nothing should be persisted when validation fails")
		}
	})

	t.Run("attended underivable group label errors", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "group alpha")

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
			Attended: true,
		})
		if !errors.Is(err, review.ErrGroupNumberRequired) {
			t.Errorf("CompleteFlat() error = %v, want ErrGroupNumberRequired", err)
		}
	})

	t.Run("attended missing group label errors", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "")

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
			Attended: true,
		})
		if !errors.Is(err, review.ErrGroupNumberRequired) {
			t.Errorf("CompleteFlat() error = %v, want ErrGroupNumberRequired", err)
		}
	})

	t.Run("unattended underivable group label defaults to zero", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "group alpha")

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
		})
		if err != nil {
			t.Fatalf("CompleteFlat() error = %v", err)
		}
		if lists.inserted["retail"][0].GroupNo != 0 {
			t.Errorf("GroupNo = %d, want 0", lists.inserted["retail"][0].GroupNo)
		}
	})

	t.Run("cannot save twice", func(t *testing.T) {
		lists := newFakeLists()
		rt, staged := start(t, lists, "GRP 3")

		if _, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
		}); err != nil {
			t.Fatalf("first CompleteFlat() error = %v", err)
		}

		_, err := rt.CompleteFlat(context.Background(), pipeline.CompleteFlatCommand{
			ReviewID: staged.ID,
			Items:    categorized(staged),
		})
		if !errors.Is(err, review.ErrInvalidTransition) {
			t.Errorf("second CompleteFlat() error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestTreePipeline(t *testing.T) {
	tree := &extraction.TreeResult{
		ProblemStatement: "High defect rate",
		GroupName:        "GRP 7",
		Causes: []extraction.Cause{
			{
				MainCause: "Machines",
				SubCauses: []extraction.SubCause{
					{SubCause: "Calibration", Details: []string{"drift"}},
				},
				Details: []string{"aging fleet"},
			},
		},
	}

	t.Run("stages flattened rows", func(t *testing.T) {
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{tree: tree})

		staged, err := rt.StartTree(context.Background(), pipeline.StartTreeCommand{
			SessionName: "Plant Audit",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartTree() error = %v", err)
		}

		if staged.Stage != review.StageVerify {
			t.Errorf("Stage = %q, want verify", staged.Stage)
		}
		if staged.ProblemStatement != "High defect rate" {
			t.Errorf("ProblemStatement = %q", staged.ProblemStatement)
		}
		if staged.GroupName != "GRP 7" {
			t.Errorf("GroupName = %q, want GRP 7", staged.GroupName)
		}
		if len(staged.TreeItems) != 2 {
			t.Fatalf("TreeItems len = %d, want 2", len(staged.TreeItems))
		}
	})

	t.Run("persists reviewed rows and comment", func(t *testing.T) {
		fb := newFakeFishbone()
		rt := newRuntime(newFakeLists(), fb, &fakeExtractor{tree: tree})

		staged, err := rt.StartTree(context.Background(), pipeline.StartTreeCommand{
			SessionName: "Plant Audit",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartTree() error = %v", err)
		}

		items := append([]review.TreeItem(nil), staged.TreeItems...)
		items[0].RowComment = "recurring issue"

		summary, err := rt.CompleteTree(context.Background(), pipeline.CompleteTreeCommand{
			ReviewID:       staged.ID,
			Items:          items,
			GroupName:      "line-2",
			SessionComment: "audit complete",
		})
		if err != nil {
			t.Fatalf("CompleteTree() error = %v", err)
		}

		if summary.Inserted != 2 {
			t.Errorf("Inserted = %d, want 2", summary.Inserted)
		}
		if fb.inserted[0].ProblemStatement != "High defect rate" {
			t.Errorf("ProblemStatement = %q", fb.inserted[0].ProblemStatement)
		}
		if fb.inserted[0].GroupName != "line-2" {
			t.Errorf("GroupName = %q", fb.inserted[0].GroupName)
		}
		if fb.inserted[0].RowComment != "recurring issue" {
			t.Errorf("RowComment = %q", fb.inserted[0].RowComment)
		}
		if fb.comments["plant_audit"] != "audit complete" {
			t.Errorf("session comment = %q", fb.comments["plant_audit"])
		}
	})

	t.Run("falls back to the extracted group label", func(t *testing.T) {
		fb := newFakeFishbone()
		rt := newRuntime(newFakeLists(), fb, &fakeExtractor{tree: tree})

		staged, err := rt.StartTree(context.Background(), pipeline.StartTreeCommand{
			SessionName: "Plant Audit",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartTree() error = %v", err)
		}

		if _, err := rt.CompleteTree(context.Background(), pipeline.CompleteTreeCommand{
			ReviewID: staged.ID,
		}); err != nil {
			t.Fatalf("CompleteTree() error = %v", err)
		}

		if fb.inserted[0].GroupName != "GRP 7" {
			t.Errorf("GroupName = %q, want the extracted GRP 7", fb.inserted[0].GroupName)
		}
	})
}

func TestArchivedImages(t *testing.T) {
	newArchivedRuntime := func(t *testing.T) (*pipeline.Runtime, *fakeArchive, *review.Review) {
		t.Helper()
		archive := newFakeArchive()
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{
			flat: &extraction.FlatResult{GroupName: "GRP 1"},
		})
		rt.Archive = archive

		staged, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "retail",
			Filename:    "board.png",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartFlat() error = %v", err)
		}
		return rt, archive, staged
	}

	t.Run("upload is archived under the review's key", func(t *testing.T) {
		_, archive, staged := newArchivedRuntime(t)

		if staged.ImageKey == "" {
			t.Fatal("ImageKey should be recorded when archival is enabled")
		}
		if _, ok := archive.blobs[staged.ImageKey]; !ok {
			t.Errorf("archive missing blob for key %q", staged.ImageKey)
		}
	})

	t.Run("download streams the archived image", func(t *testing.T) {
		rt, _, staged := newArchivedRuntime(t)

		body, contentType, err := rt.DownloadImage(context.Background(), staged.ID)
		if err != nil {
			t.Fatalf("DownloadImage() error = %v", err)
		}
		defer body.Close()

		if contentType != "image/png" {
			t.Errorf("contentType = %q, want image/png", contentType)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(data, testImage().Data) {
			t.Errorf("data = %q, want the uploaded bytes", data)
		}
	})

	t.Run("discard removes the review and its image", func(t *testing.T) {
		rt, archive, staged := newArchivedRuntime(t)

		rt.Discard(context.Background(), staged.ID)

		if _, err := rt.Reviews.Get(staged.ID); !errors.Is(err, review.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
		if len(archive.blobs) != 0 {
			t.Errorf("archive should be empty, holds %d blobs", len(archive.blobs))
		}
	})

	t.Run("download without an archive reports not found", func(t *testing.T) {
		rt := newRuntime(newFakeLists(), newFakeFishbone(), &fakeExtractor{
			flat: &extraction.FlatResult{},
		})

		staged, err := rt.StartFlat(context.Background(), pipeline.StartFlatCommand{
			SessionName: "retail",
			Image:       testImage(),
		})
		if err != nil {
			t.Fatalf("StartFlat() error = %v", err)
		}

		_, _, err = rt.DownloadImage(context.Background(), staged.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DownloadImage() error = %v, want storage.ErrNotFound", err)
		}
	})
}
