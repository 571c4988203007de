package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/messaging/payloads"
	"github.com/GoArmGo/GalleryApp/internal/util"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLedgerStore is an in-memory ports.LedgerStore. A per-(picture, source)
// mutex mirrors the serialization the real store gets from advisory locks.
type fakeLedgerStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	tags  map[string]*domain.Tag // by slug
	links []fakeLink
	seq   int
}

type fakeLink struct {
	pictureID uuid.UUID
	tagID     uuid.UUID
	source    domain.TagSource
	seq       int
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		locks: make(map[string]*sync.Mutex),
		tags:  make(map[string]*domain.Tag),
	}
}

func (s *fakeLedgerStore) GetOrCreateTag(_ context.Context, rawName string) (*domain.Tag, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug := util.Slugify(rawName)
	if slug == "" {
		return nil, false, fmt.Errorf("tag name %q produces an empty slug", rawName)
	}
	if tag, ok := s.tags[slug]; ok {
		copied := *tag
		return &copied, false, nil
	}
	tag := &domain.Tag{
		ID:        uuid.New(),
		Name:      util.NormalizeTagName(rawName),
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	s.tags[slug] = tag
	copied := *tag
	return &copied, true, nil
}

func (s *fakeLedgerStore) GetTagBySlug(_ context.Context, slug string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.tags[slug]; ok {
		copied := *tag
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeLedgerStore) IncrementUsage(_ context.Context, tagID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range s.tags {
		if tag.ID == tagID {
			tag.UsageCount++
			return nil
		}
	}
	return errors.New("tag not found")
}

func (s *fakeLedgerStore) DecrementUsage(_ context.Context, tagID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range s.tags {
		if tag.ID == tagID {
			if tag.UsageCount > 0 {
				tag.UsageCount--
			}
			return nil
		}
	}
	return errors.New("tag not found")
}

func (s *fakeLedgerStore) CreateLink(_ context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.pictureID == pictureID && l.tagID == tagID && l.source == source {
			return false, nil
		}
	}
	s.seq++
	s.links = append(s.links, fakeLink{pictureID: pictureID, tagID: tagID, source: source, seq: s.seq})
	return true, nil
}

func (s *fakeLedgerStore) DeleteLink(_ context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.links {
		if l.pictureID == pictureID && l.tagID == tagID && l.source == source {
			s.links = append(s.links[:i], s.links[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeLedgerStore) LinksBySource(_ context.Context, pictureID uuid.UUID, source domain.TagSource) ([]domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tags []domain.Tag
	for _, l := range s.links {
		if l.pictureID != pictureID || l.source != source {
			continue
		}
		for _, tag := range s.tags {
			if tag.ID == l.tagID {
				tags = append(tags, *tag)
			}
		}
	}
	return tags, nil
}

func (s *fakeLedgerStore) AllTags(_ context.Context, pictureID uuid.UUID) ([]domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	var tags []domain.Tag
	for _, l := range s.links {
		if l.pictureID != pictureID {
			continue
		}
		if _, ok := seen[l.tagID]; ok {
			continue
		}
		seen[l.tagID] = struct{}{}
		for _, tag := range s.tags {
			if tag.ID == l.tagID {
				tags = append(tags, *tag)
			}
		}
	}
	return tags, nil
}

func (s *fakeLedgerStore) WithSourceLock(_ context.Context, pictureID uuid.UUID, source domain.TagSource, fn func(ports.LedgerStore) error) error {
	key := pictureID.String() + "|" + string(source)
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(s)
}

// usage returns the current usage count of a tag by name, -1 when unknown.
func (s *fakeLedgerStore) usage(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.tags[util.Slugify(name)]; ok {
		return tag.UsageCount
	}
	return -1
}

// fakePictureStorage is an in-memory ports.PictureStorage.
type fakePictureStorage struct {
	mu         sync.Mutex
	pictures   map[uuid.UUID]*domain.Picture
	failCreate error
}

func newFakePictureStorage() *fakePictureStorage {
	return &fakePictureStorage{pictures: make(map[uuid.UUID]*domain.Picture)}
}

func (s *fakePictureStorage) CreatePicture(_ context.Context, picture *domain.Picture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	copied := *picture
	s.pictures[picture.ID] = &copied
	return nil
}

func (s *fakePictureStorage) GetPictureByID(_ context.Context, id uuid.UUID) (*domain.Picture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *fakePictureStorage) GetLivePictureByID(_ context.Context, id uuid.UUID) (*domain.Picture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok && !p.IsDeleted() {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *fakePictureStorage) UpdateOCRText(_ context.Context, id uuid.UUID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		p.OCRText = text
	}
	return nil
}

func (s *fakePictureStorage) MergeEXIFData(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		p.EXIFData = p.EXIFData.Merge(domain.JSONMap(fields))
	}
	return nil
}

func (s *fakePictureStorage) SetTakenAt(_ context.Context, id uuid.UUID, takenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		p.TakenAt = &takenAt
	}
	return nil
}

func (s *fakePictureStorage) ListPicturesByAlbum(_ context.Context, albumID uuid.UUID, _, _ int) ([]domain.Picture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Picture
	for _, p := range s.pictures {
		if p.AlbumID == albumID && !p.IsDeleted() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePictureStorage) SoftDeletePicture(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		now := time.Now()
		p.DeletedAt = &now
	}
	return nil
}

func (s *fakePictureStorage) RestorePicture(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pictures[id]; ok {
		p.DeletedAt = nil
	}
	return nil
}

// fakeAlbumStorage is an in-memory ports.AlbumStorage.
type fakeAlbumStorage struct {
	mu     sync.Mutex
	albums map[uuid.UUID]*domain.Album
}

func newFakeAlbumStorage() *fakeAlbumStorage {
	return &fakeAlbumStorage{albums: make(map[uuid.UUID]*domain.Album)}
}

func (s *fakeAlbumStorage) addAlbum() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	album := &domain.Album{ID: uuid.New(), Name: "test album", EXIFMetadata: domain.JSONMap{}}
	s.albums[album.ID] = album
	return album.ID
}

func (s *fakeAlbumStorage) CreateAlbum(_ context.Context, album *domain.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *album
	s.albums[album.ID] = &copied
	return nil
}

func (s *fakeAlbumStorage) GetAlbumByID(_ context.Context, id uuid.UUID) (*domain.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.albums[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeAlbumStorage) MergeEXIFMetadata(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.albums[id]; ok {
		a.EXIFMetadata = a.EXIFMetadata.Merge(domain.JSONMap(fields))
	}
	return nil
}

func (s *fakeAlbumStorage) AddTag(context.Context, uuid.UUID, string) error    { return nil }
func (s *fakeAlbumStorage) RemoveTag(context.Context, uuid.UUID, string) error { return nil }

// fakeFileStorage is an in-memory ports.FileStorage.
type fakeFileStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{objects: make(map[string][]byte)}
}

func (s *fakeFileStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *fakeFileStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.objects[key]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, ports.ErrObjectNotFound
}

func (s *fakeFileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deletes = append(s.deletes, key)
	return nil
}

// fakePublisher records dispatched enrichment tasks.
type fakePublisher struct {
	mu          sync.Mutex
	visionTasks []payloads.PictureTaskPayload
	exifTasks   []payloads.PictureTaskPayload
}

func (p *fakePublisher) PublishVisionTask(_ context.Context, payload payloads.PictureTaskPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visionTasks = append(p.visionTasks, payload)
	return nil
}

func (p *fakePublisher) PublishEXIFTask(_ context.Context, payload payloads.PictureTaskPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exifTasks = append(p.exifTasks, payload)
	return nil
}

// fakeDetector and fakeRecognizer return canned vision results.
type fakeDetector struct {
	labels []string
	err    error
}

func (d *fakeDetector) Detect(context.Context, []byte) ([]string, error) {
	return d.labels, d.err
}

type fakeRecognizer struct {
	text string
	err  error
}

func (r *fakeRecognizer) Recognize(context.Context, []byte) (string, error) {
	return r.text, r.err
}
