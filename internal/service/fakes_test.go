package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// In-memory repository fakes backing the service tests. They mimic the
// Postgres layer closely enough to matter: lookups miss with pgx.ErrNoRows,
// GetByID hands out copies so un-persisted mutations never leak back, and
// AdjustQuantity refuses to go negative the way the SQL guard does.

type fakeRoleRepo struct {
	mu        sync.Mutex
	seq       int
	roles     map[string]*domain.Role
	userCount map[string]int
	created   int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*domain.Role{}, userCount: map[string]int{}}
}

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	role.ID = fmt.Sprintf("role-%d", r.seq)
	copied := *role
	r.roles[role.ID] = &copied
	r.created++
	return nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *role
	r.roles[role.ID] = &copied
	return nil
}

func (r *fakeRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.roles, id)
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *role
	return &copied, nil
}

func (r *fakeRoleRepo) GetByCode(_ context.Context, code string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Code == code {
			copied := *role
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *fakeRoleRepo) CountUsers(_ context.Context, roleID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userCount[roleID], nil
}

type fakeUserRepo struct {
	mu          sync.Mutex
	seq         int
	users       map[string]*domain.User
	ticketCount map[string]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}, ticketCount: map[string]int{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.RoleID != nil && user.RoleID != *filter.RoleID {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) CountTickets(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticketCount[userID], nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type fakeTicketRepo struct {
	mu         sync.Mutex
	seq        int
	tickets    map[string]*domain.Ticket
	lastFilter repository.TicketFilter
	linked     map[string]int
	openByCust map[string]int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:    map[string]*domain.Ticket{},
		linked:     map[string]int{},
		openByCust: map[string]int{},
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if !filter.IncludeDeleted && ticket.IsDeleted() {
			continue
		}
		if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.TicketStatus]int{}
	for _, ticket := range r.tickets {
		if !ticket.IsDeleted() {
			counts[ticket.Status]++
		}
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountByPriority(_ context.Context) (map[domain.TicketPriority]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.TicketPriority]int{}
	for _, ticket := range r.tickets {
		if !ticket.IsDeleted() {
			counts[ticket.Priority]++
		}
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountOpenByAssignee(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, ticket := range r.tickets {
		if ticket.AssigneeID == nil || ticket.IsDeleted() {
			continue
		}
		if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
			continue
		}
		counts[*ticket.AssigneeID]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountOpenForCustomer(_ context.Context, customerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openByCust[customerID], nil
}

func (r *fakeTicketRepo) CountLinkedToItem(_ context.Context, itemID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.linked[itemID], nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.TicketComment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("comment-%d", r.seq)
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketComment
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	seq         int
	attachments map[string]*domain.TicketAttachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: map[string]*domain.TicketAttachment{}}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, att *domain.TicketAttachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	att.ID = fmt.Sprintf("att-%d", r.seq)
	copied := *att
	r.attachments[att.ID] = &copied
	return nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.attachments, id)
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.TicketAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	att, ok := r.attachments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *att
	return &copied, nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketAttachment
	for _, att := range r.attachments {
		if att.TicketID == ticketID {
			out = append(out, *att)
		}
	}
	return out, nil
}

type fakeAssignmentRepo struct {
	mu      sync.Mutex
	seq     int
	records []domain.AssignmentRecord
}

func (r *fakeAssignmentRepo) Create(_ context.Context, record *domain.AssignmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	record.ID = fmt.Sprintf("assign-%d", r.seq)
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeAssignmentRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.AssignmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AssignmentRecord
	for _, rec := range r.records {
		if rec.TicketID == ticketID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeInventoryRepo struct {
	mu        sync.Mutex
	seq       int
	items     map[string]*domain.InventoryItem
	movements []domain.StockMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: map[string]*domain.InventoryItem{}}
}

func (r *fakeInventoryRepo) CreateItem(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item.ID = fmt.Sprintf("item-%d", r.seq)
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInventoryRepo) UpdateItem(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// UPDATE does not touch quantity.
	item.Quantity = stored.Quantity
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeInventoryRepo) DeleteItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *fakeInventoryRepo) GetItemByID(_ context.Context, id string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (r *fakeInventoryRepo) GetItemBySKU(_ context.Context, sku string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.SKU == sku {
			copied := *item
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeInventoryRepo) ListItems(_ context.Context, filter repository.ItemFilter) ([]domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		if filter.LowStock && !item.LowStock() {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeInventoryRepo) AdjustQuantity(_ context.Context, itemID string, delta int) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if item.Quantity+delta < 0 {
		// The SQL guard rejects a negative result, surfacing as no rows.
		return nil, pgx.ErrNoRows
	}
	item.Quantity += delta
	copied := *item
	return &copied, nil
}

func (r *fakeInventoryRepo) CreateMovement(_ context.Context, movement *domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	movement.ID = fmt.Sprintf("move-%d", r.seq)
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeInventoryRepo) ListMovements(_ context.Context, itemID string, _, _ int) ([]domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StockMovement
	for _, m := range r.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) CountLowStock(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, item := range r.items {
		if item.LowStock() {
			count++
		}
	}
	return count, nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	seq       int
	customers map[string]*domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]*domain.Customer{}}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	customer.ID = fmt.Sprintf("cust-%d", r.seq)
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _ repository.CustomerFilter) ([]domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		out = append(out, *customer)
	}
	return out, nil
}

type fakeInstallationRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]*domain.InstallationRequest
}

func newFakeInstallationRepo() *fakeInstallationRepo {
	return &fakeInstallationRepo{requests: map[string]*domain.InstallationRequest{}}
}

func (r *fakeInstallationRepo) Create(_ context.Context, req *domain.InstallationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = fmt.Sprintf("inst-%d", r.seq)
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeInstallationRepo) Update(_ context.Context, req *domain.InstallationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeInstallationRepo) GetByID(_ context.Context, id string) (*domain.InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (r *fakeInstallationRepo) List(_ context.Context, filter repository.InstallationFilter) ([]domain.InstallationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.InstallationRequest, 0, len(r.requests))
	for _, req := range r.requests {
		if filter.CustomerID != nil && req.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = fmt.Sprintf("audit-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, entry := range r.entries {
		if filter.EntityType != nil && entry.EntityType != *filter.EntityType {
			continue
		}
		if filter.EntityID != nil && entry.EntityID != *filter.EntityID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *fakeAuditRepo) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *fakeAuditRepo) last() *domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	entry := r.entries[len(r.entries)-1]
	return &entry
}

type captureDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[events.EventType][]events.EventHandler
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{handlers: map[events.EventType][]events.EventHandler{}}
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := append([]events.EventHandler{}, d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, h := range handlers {
		_ = h(ctx, event)
	}
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *captureDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
}

func (u *fakeUploader) Upload(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	if content != nil {
		_, _ = io.Copy(io.Discard, content)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, key)
	return "https://files.test/" + key, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deletes = append(u.deletes, key)
	return nil
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
