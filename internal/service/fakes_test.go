package service

import (
	"context"
	"strings"
	"sync"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/vies"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// in-memory fakes for the repository layer, shared across service tests

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAllocator struct {
	mu   sync.Mutex
	next int64
	err  error
}

func (f *fakeAllocator) NextNumber(context.Context, interface{}) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next, nil
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	entries   []model.ActivityLog
	appendErr error
}

func (f *fakeActivityRepo) Append(_ context.Context, entry *model.ActivityLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter, page, limit int) ([]model.ActivityLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []model.ActivityLog
	for _, e := range f.entries {
		if filter.CauserID != "" && (e.CauserID == nil || e.CauserID.String() != filter.CauserID) {
			continue
		}
		// date-only bounds, both ends inclusive
		if filter.From != "" && e.CreatedAt.Format("2006-01-02") < filter.From {
			continue
		}
		if filter.To != "" && e.CreatedAt.Format("2006-01-02") > filter.To {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(e.Description), needle) &&
				!strings.Contains(strings.ToLower(e.LogName), needle) {
				continue
			}
		}
		matched = append(matched, e)
	}

	// newest first
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeActivityRepo) descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Description)
	}
	return out
}

type fakeEntityRepo struct {
	mu          sync.Mutex
	entities    map[uuid.UUID]*model.Entity
	createErr   []error // consumed one per Create call
	onCreateErr func()  // fires with an injected error; mutates the maps directly, mu is held
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{entities: map[uuid.UUID]*model.Entity{}}
}

func (f *fakeEntityRepo) Create(_ context.Context, entity *model.Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			if f.onCreateErr != nil {
				f.onCreateErr()
			}
			return err
		}
	}
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	cp := *entity
	f.entities[entity.ID] = &cp
	return nil
}

func (f *fakeEntityRepo) Update(_ context.Context, entity *model.Entity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entity
	f.entities[entity.ID] = &cp
	return nil
}

func (f *fakeEntityRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entities, id)
	return nil
}

func (f *fakeEntityRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntityRepo) NIFExists(_ context.Context, nif string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entities {
		if e.NIF != nil && *e.NIF == nif {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntityRepo) List(_ context.Context, entityType, search string) ([]model.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entity
	for _, e := range f.entities {
		switch entityType {
		case "client":
			if !e.IsClient {
				continue
			}
		case "supplier":
			if !e.IsSupplier {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

type fakeProposalRepo struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*model.Proposal
	createErr []error
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: map[uuid.UUID]*model.Proposal{}}
}

func (f *fakeProposalRepo) Create(_ context.Context, proposal *model.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return err
		}
	}
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	cp := *proposal
	f.proposals[proposal.ID] = &cp
	return nil
}

func (f *fakeProposalRepo) Update(_ context.Context, proposal *model.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.proposals[proposal.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *proposal
	f.proposals[proposal.ID] = &cp
	return nil
}

func (f *fakeProposalRepo) ReplaceLines(_ context.Context, proposalID uuid.UUID, lines []model.ProposalLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[proposalID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range lines {
		lines[i].ProposalID = proposalID
	}
	p.Lines = lines
	return nil
}

func (f *fakeProposalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	return f.FindByIDWithLines(context.Background(), id)
}

func (f *fakeProposalRepo) FindByIDWithLines(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProposalRepo) List(_ context.Context, page, limit int) ([]model.Proposal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Proposal
	for _, p := range f.proposals {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

type fakeRoleRepo struct {
	mu        sync.Mutex
	roles     map[uuid.UUID]*model.Role
	perms     map[string]model.Permission // by name
	grants    map[uuid.UUID][]model.Permission
	userCount map[uuid.UUID]int64
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:     map[uuid.UUID]*model.Role{},
		perms:     map[string]model.Permission{},
		grants:    map[uuid.UUID][]model.Permission{},
		userCount: map[uuid.UUID]int64{},
	}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	cp := *role
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *role
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, id)
	delete(f.grants, id)
	return nil
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoleRepo) FindByIDWithPermissions(_ context.Context, id uuid.UUID) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	cp.Permissions = append([]model.Permission(nil), f.grants[id]...)
	return &cp, nil
}

func (f *fakeRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) ListAll(_ context.Context) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Role
	for id, r := range f.roles {
		cp := *r
		cp.Permissions = append([]model.Permission(nil), f.grants[id]...)
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeRoleRepo) CountUsers(_ context.Context, roleID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCount[roleID], nil
}

func (f *fakeRoleRepo) FindOrCreatePermission(_ context.Context, perm *model.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.perms[perm.Name]; ok {
		*perm = existing
		return nil
	}
	perm.ID = uuid.New()
	f.perms[perm.Name] = *perm
	return nil
}

func (f *fakeRoleRepo) ReplacePermissions(_ context.Context, role *model.Role, perms []model.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[role.ID] = append([]model.Permission(nil), perms...)
	return nil
}

func (f *fakeRoleRepo) ClearPermissions(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[role.ID] = nil
	return nil
}

func (f *fakeRoleRepo) PermissionNamesByRoleName(_ context.Context, roleName string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.roles {
		if r.Name == roleName {
			var names []string
			for _, p := range f.grants[id] {
				names = append(names, p.Name)
			}
			return names, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleRepo) grantNames(roleID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, p := range f.grants[roleID] {
		names = append(names, p.Name)
	}
	return names
}

type fakeViesClient struct {
	mu     sync.Mutex
	result vies.CheckVatResult
	err    error
	calls  int
}

func (f *fakeViesClient) CheckVat(context.Context, string, string) (vies.CheckVatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return vies.CheckVatResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeViesClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(event string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}
