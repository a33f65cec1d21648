package biz

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
)

type fakeContentRepo struct {
	items     []*types.ContentItem
	lastQuery *SearchQuery
	err       error
	// dropTitles simulates rows deleted between the id and title lookups
	dropTitles map[int64]bool
}

func (r *fakeContentRepo) visible(item *types.ContentItem, kinds []string) bool {
	return slices.Contains(kinds, item.Type) && !slices.Contains(types.ExcludedFromAny, item.Status)
}

func (r *fakeContentRepo) SearchTitleIDs(_ context.Context, q *SearchQuery) ([]int64, error) {
	r.lastQuery = q
	if r.err != nil {
		return nil, r.err
	}

	var ids []int64
	for _, item := range r.items {
		if !r.visible(item, q.Kinds) {
			continue
		}
		title := strings.ToLower(item.Title)
		ok := true
		for _, t := range q.Included() {
			ok = ok && strings.Contains(title, strings.ToLower(t))
		}
		for _, t := range q.Excluded() {
			ok = ok && !strings.Contains(title, strings.ToLower(t))
		}
		if ok {
			ids = append(ids, item.ID)
		}
		if len(ids) == q.Limit {
			break
		}
	}
	return ids, nil
}

func (r *fakeContentRepo) TitlesByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, item := range r.items {
		if slices.Contains(ids, item.ID) && !r.dropTitles[item.ID] {
			out[item.ID] = item.Title
		}
	}
	return out, nil
}

func (r *fakeContentRepo) IDsByExactTitle(_ context.Context, title string, kinds []string, limit int) ([]int64, error) {
	if r.err != nil {
		return nil, r.err
	}
	var ids []int64
	for _, item := range r.items {
		if r.visible(item, kinds) && item.Title == title {
			ids = append(ids, item.ID)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id int64) (*types.ContentItem, error) {
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, ErrContentNotFound
}

type fakeAttachmentRepo struct {
	items      []*types.ContentItem
	lastFilter *types.AttachmentFilter
	createErr  error
}

func (r *fakeAttachmentRepo) List(_ context.Context, filter *types.AttachmentFilter) ([]*types.ContentItem, int64, error) {
	r.lastFilter = filter
	var out []*types.ContentItem
	for _, item := range r.items {
		if filter.Parent == nil || item.Parent == *filter.Parent {
			out = append(out, item)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttachmentRepo) Create(_ context.Context, item *types.ContentItem) error {
	if r.createErr != nil {
		return r.createErr
	}
	item.ID = int64(100 + len(r.items))
	r.items = append(r.items, item)
	return nil
}

type fakeBlobStore struct {
	objects    map[string][]byte
	types      map[string]string
	presignErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeBlobStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.objects[name] = buf.Bytes()
	s.types[name] = contentType
	return nil
}

func (s *fakeBlobStore) Remove(_ context.Context, name string) error {
	delete(s.objects, name)
	return nil
}

func (s *fakeBlobStore) PresignedGet(_ context.Context, name, _ string) (*url.URL, error) {
	if s.presignErr != nil {
		return nil, s.presignErr
	}
	return url.Parse("https://blobs.example.test/media/" + name + "?X-Amz-Signature=x")
}

var errStoreDown = errors.New("store down")

// sampleStore is {1:"Alpha", 2:"Alpha Beta"} plus rows that must never match
func sampleStore() *fakeContentRepo {
	return &fakeContentRepo{items: []*types.ContentItem{
		{ID: 1, Type: types.TypePost, Status: types.StatusPublish, Title: "Alpha"},
		{ID: 2, Type: types.TypePage, Status: types.StatusDraft, Title: "Alpha Beta"},
		{ID: 3, Type: types.TypePost, Status: types.StatusTrash, Title: "Alpha Trashed"},
		{ID: 4, Type: types.TypeAttachment, Status: types.StatusInherit, Title: "Alpha"},
		{ID: 5, Type: types.TypePost, Status: types.StatusAutoDraft, Title: "Alpha"},
		{ID: 6, Type: types.TypePost, Status: types.StatusPublish, Title: "Delta"},
		{ID: 7, Type: types.TypePage, Status: types.StatusPrivate, Title: "Delta"},
	}}
}
