package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amplyst/backend/internal/auth"
	"github.com/amplyst/backend/internal/events"
	"github.com/amplyst/backend/internal/models"
	"github.com/amplyst/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memDB backs the in-memory stores. It mirrors the constraints of the schema
// that the services rely on.
type memDB struct {
	mu           sync.Mutex
	users        map[uuid.UUID]models.User
	campaigns    map[uuid.UUID]models.Campaign
	applications map[uuid.UUID]models.Application
	brands       map[uuid.UUID]models.BrandProfile      // by user id
	influencers  map[uuid.UUID]models.InfluencerProfile // by user id
	audit        []models.AuditLog
	events       []events.Event
	seq          int64
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]models.User{},
		campaigns:    map[uuid.UUID]models.Campaign{},
		applications: map[uuid.UUID]models.Application{},
		brands:       map[uuid.UUID]models.BrandProfile{},
		influencers:  map[uuid.UUID]models.InfluencerProfile{},
	}
}

// tick returns a strictly increasing creation time so listings have a stable order.
func (db *memDB) tick() time.Time {
	db.seq++
	return time.Unix(1700000000+db.seq, 0).UTC()
}

type memCampaigns struct{ db *memDB }

func (m memCampaigns) Create(_ context.Context, c *models.Campaign) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = m.db.tick()
	c.UpdatedAt = c.CreatedAt
	if c.ContentTypes == nil {
		c.ContentTypes = []string{}
	}
	m.db.campaigns[c.ID] = *c
	return nil
}

func (m memCampaigns) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.campaigns[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (m memCampaigns) Update(_ context.Context, c *models.Campaign, from string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.campaigns[c.ID]
	if !ok || cur.Status != from || cur.Status == models.CampaignStatusExpired {
		return fmt.Errorf("%w: campaign changed concurrently", models.ErrConflict)
	}
	c.UpdatedAt = m.db.tick()
	m.db.campaigns[c.ID] = *c
	return nil
}

func (m memCampaigns) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.campaigns[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	m.db.campaigns[id] = c
	return true, nil
}

func (m memCampaigns) MarkExpired(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.campaigns[id]
	if !ok || c.Status != models.CampaignStatusActive {
		return false, nil
	}
	c.Status = models.CampaignStatusExpired
	c.ExpiredAt = &at
	m.db.campaigns[id] = c
	return true, nil
}

func (m memCampaigns) deleteLocked(id uuid.UUID) {
	for appID, a := range m.db.applications {
		if a.CampaignID == id {
			delete(m.db.applications, appID)
		}
	}
	delete(m.db.campaigns, id)
}

func (m memCampaigns) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.campaigns[id]; !ok {
		return false, nil
	}
	m.deleteLocked(id)
	return true, nil
}

func (m memCampaigns) DeleteExpired(_ context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.campaigns[id]
	if !ok || c.Status != models.CampaignStatusExpired || c.ExpiredAt == nil || !c.ExpiredAt.Before(cutoff) {
		return false, nil
	}
	m.deleteLocked(id)
	return true, nil
}

func (m memCampaigns) filter(keep func(c models.Campaign) bool) []models.Campaign {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.Campaign{}
	for _, c := range m.db.campaigns {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m memCampaigns) ListByUser(_ context.Context, userID uuid.UUID, includeExpired bool) ([]models.Campaign, error) {
	return m.filter(func(c models.Campaign) bool {
		return c.UserID == userID && (includeExpired || c.Status != models.CampaignStatusExpired)
	}), nil
}

func (m memCampaigns) ListEndedActive(_ context.Context, now time.Time) ([]models.Campaign, error) {
	return m.filter(func(c models.Campaign) bool {
		return c.Status == models.CampaignStatusActive && c.HasEnded(now)
	}), nil
}

func (m memCampaigns) ListExpiredBefore(_ context.Context, cutoff time.Time) ([]models.Campaign, error) {
	return m.filter(func(c models.Campaign) bool {
		return c.Status == models.CampaignStatusExpired && c.ExpiredAt != nil && c.ExpiredAt.Before(cutoff)
	}), nil
}

func (m memCampaigns) Browse(_ context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	return m.filter(func(c models.Campaign) bool {
		if c.Status != models.CampaignStatusActive {
			return false
		}
		if f.ContentType != nil {
			found := false
			for _, t := range c.ContentTypes {
				found = found || t == *f.ContentType
			}
			if !found {
				return false
			}
		}
		if f.Search != nil && !strings.Contains(strings.ToLower(c.Title+" "+c.Description), strings.ToLower(*f.Search)) {
			return false
		}
		return true
	}), nil
}

type memApplications struct{ db *memDB }

func (m memApplications) Create(_ context.Context, a *models.Application) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.campaigns[a.CampaignID]; !ok {
		return models.ErrNotFound
	}
	for _, other := range m.db.applications {
		if other.CampaignID == a.CampaignID && other.InfluencerID == a.InfluencerID {
			return fmt.Errorf("%w: applications_campaign_id_influencer_id_key", models.ErrConflict)
		}
	}
	a.ID = uuid.New()
	m.db.applications[a.ID] = *a
	return nil
}

// enrich applies the live display values the way the SQL listing does.
func (m memApplications) enrich(a models.Application) models.Application {
	if c, ok := m.db.campaigns[a.CampaignID]; ok && c.Title != "" {
		a.CampaignTitle = c.Title
	}
	if u, ok := m.db.users[a.InfluencerID]; ok && u.Name != "" {
		a.InfluencerName = u.Name
	}
	if p, ok := m.db.influencers[a.InfluencerID]; ok && p.Niche != "" {
		a.InfluencerNiche = p.Niche
	}
	return a
}

func (m memApplications) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.applications[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	a = m.enrich(a)
	return &a, nil
}

func (m memApplications) Decide(_ context.Context, id uuid.UUID, status string, updatedAt int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.applications[id]
	if !ok || a.Status != models.ApplicationStatusPending {
		return false, nil
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	m.db.applications[id] = a
	return true, nil
}

func (m memApplications) list(keep func(a models.Application) bool) []models.Application {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.Application{}
	for _, a := range m.db.applications {
		if keep(a) {
			out = append(out, m.enrich(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func (m memApplications) ListByBrand(_ context.Context, brandID uuid.UUID) ([]models.Application, error) {
	return m.list(func(a models.Application) bool { return a.BrandID == brandID }), nil
}

func (m memApplications) ListByInfluencer(_ context.Context, influencerID uuid.UUID) ([]models.Application, error) {
	return m.list(func(a models.Application) bool { return a.InfluencerID == influencerID }), nil
}

func (m memApplications) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]models.Application, error) {
	return m.list(func(a models.Application) bool { return a.CampaignID == campaignID }), nil
}

func (m memApplications) StatusCountsByOwner(_ context.Context, userID uuid.UUID) ([]models.StatusCount, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.StatusCount
	for _, c := range m.db.campaigns {
		if c.UserID != userID {
			continue
		}
		byStatus := map[string]int{}
		for _, a := range m.db.applications {
			if a.CampaignID == c.ID {
				byStatus[a.Status]++
			}
		}
		if len(byStatus) == 0 {
			out = append(out, models.StatusCount{CampaignID: c.ID})
		}
		for status, n := range byStatus {
			out = append(out, models.StatusCount{CampaignID: c.ID, Status: status, Count: n})
		}
	}
	return out, nil
}

type memProfiles struct{ db *memDB }

func (m memProfiles) claimRole(userID uuid.UUID, role string) error {
	u, ok := m.db.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	if u.Role != nil {
		return fmt.Errorf("%w: user already onboarded", models.ErrConflict)
	}
	u.Role = &role
	m.db.users[userID] = u
	return nil
}

func (m memProfiles) CreateInfluencer(_ context.Context, p *models.InfluencerProfile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if err := m.claimRole(p.UserID, models.RoleInfluencer); err != nil {
		return err
	}
	p.ID = uuid.New()
	p.CreatedAt = m.db.tick()
	p.UpdatedAt = p.CreatedAt
	m.db.influencers[p.UserID] = *p
	return nil
}

func (m memProfiles) CreateBrand(_ context.Context, p *models.BrandProfile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if err := m.claimRole(p.UserID, models.RoleBrand); err != nil {
		return err
	}
	p.ID = uuid.New()
	p.CreatedAt = m.db.tick()
	p.UpdatedAt = p.CreatedAt
	m.db.brands[p.UserID] = *p
	return nil
}

func (m memProfiles) GetInfluencerByUserID(_ context.Context, userID uuid.UUID) (*models.InfluencerProfile, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.influencers[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m memProfiles) GetBrandByUserID(_ context.Context, userID uuid.UUID) (*models.BrandProfile, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.brands[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m memProfiles) UpdateInfluencer(_ context.Context, p *models.InfluencerProfile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.influencers[p.UserID]
	if !ok {
		return models.ErrNotFound
	}
	p.ID, p.CreatedAt, p.UpdatedAt = cur.ID, cur.CreatedAt, m.db.tick()
	m.db.influencers[p.UserID] = *p
	return nil
}

func (m memProfiles) UpdateBrand(_ context.Context, p *models.BrandProfile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.brands[p.UserID]
	if !ok {
		return models.ErrNotFound
	}
	p.ID, p.CreatedAt, p.UpdatedAt = cur.ID, cur.CreatedAt, m.db.tick()
	m.db.brands[p.UserID] = *p
	return nil
}

type memUsers struct{ db *memDB }

func (m memUsers) UpsertBySubject(_ context.Context, subject, email, name string) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, u := range m.db.users {
		if u.ExternalSubject == subject {
			if email != "" {
				u.Email = email
			}
			if name != "" {
				u.Name = name
			}
			m.db.users[id] = u
			return &u, nil
		}
	}
	u := models.User{ID: uuid.New(), ExternalSubject: subject, Email: email, Name: name, CreatedAt: m.db.tick()}
	m.db.users[u.ID] = u
	return &u, nil
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

type memAudit struct{ db *memDB }

func (m memAudit) Log(_ context.Context, entry models.AuditLog) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = m.db.tick()
	m.db.audit = append(m.db.audit, entry)
	return nil
}

func (m memAudit) GetByEntity(_ context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(m.db.audit) - 1; i >= 0; i-- {
		l := m.db.audit[i]
		if l.EntityType == entityType && l.EntityID != nil && *l.EntityID == entityID {
			out = append(out, l)
		}
	}
	if offset >= len(out) {
		return []models.AuditLog{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memPublisher struct{ db *memDB }

func (m memPublisher) Publish(_ context.Context, _ string, event events.Event) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.events = append(m.db.events, event)
	return nil
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db           *memDB
	clock        time.Time
	campaigns    *CampaignService
	applications *ApplicationService
	profiles     *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newMemDB()
	log := zap.NewNop()
	env := &testEnv{db: db, clock: testNow}
	clock := func() time.Time { return env.clock }

	env.campaigns = NewCampaignService(memCampaigns{db}, memAudit{db}, memPublisher{db}, 0, log)
	env.campaigns.now = clock
	env.applications = NewApplicationService(memApplications{db}, memCampaigns{db}, memProfiles{db}, memAudit{db}, memPublisher{db}, log)
	env.applications.now = clock
	env.profiles = NewProfileService(memUsers{db}, memProfiles{db}, memAudit{db}, log)
	return env
}

func (e *testEnv) user(t *testing.T, name string) auth.Identity {
	t.Helper()
	claims := &auth.Claims{Email: strings.ToLower(name) + "@example.com", Name: name}
	claims.Subject = "idp|" + name
	id, err := e.profiles.ResolveIdentity(context.Background(), claims)
	if err != nil {
		t.Fatalf("resolve identity: %v", err)
	}
	return id
}

func (e *testEnv) brand(t *testing.T, name string) auth.Identity {
	t.Helper()
	id := e.user(t, name)
	if _, err := e.profiles.CreateBrandProfile(context.Background(), id, BrandProfileInput{CompanyName: name + " Inc"}); err != nil {
		t.Fatalf("create brand profile: %v", err)
	}
	id.Role = models.RoleBrand
	return id
}

func (e *testEnv) influencer(t *testing.T, name, niche string) auth.Identity {
	t.Helper()
	id := e.user(t, name)
	in := InfluencerProfileInput{Niche: niche, FollowerCount: 12000, Platforms: []string{"instagram"}}
	if _, err := e.profiles.CreateInfluencerProfile(context.Background(), id, in); err != nil {
		t.Fatalf("create influencer profile: %v", err)
	}
	id.Role = models.RoleInfluencer
	return id
}

func (e *testEnv) campaign(t *testing.T, owner auth.Identity, title, status string, endDate *string) *models.Campaign {
	t.Helper()
	c, err := e.campaigns.Create(context.Background(), owner, CampaignInput{
		Title:       title,
		Description: "Campaign " + title,
		Status:      status,
		EndDate:     endDate,
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return c
}

// put overwrites the stored campaign, bypassing the service.
func (e *testEnv) put(c models.Campaign) {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	e.db.campaigns[c.ID] = c
}

func (e *testEnv) stored(t *testing.T, id uuid.UUID) (models.Campaign, bool) {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	c, ok := e.db.campaigns[id]
	return c, ok
}

func (e *testEnv) storedApp(t *testing.T, id uuid.UUID) (models.Application, bool) {
	t.Helper()
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	a, ok := e.db.applications[id]
	return a, ok
}

func day(offset int) *string {
	s := testNow.AddDate(0, 0, offset).Format(models.DateLayout)
	return &s
}
