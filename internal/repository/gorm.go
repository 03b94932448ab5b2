package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/legalcms/backend/internal/models"
)

// NewGormRepositories wires every repository to the same database handle.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        NewGormUserRepository(db),
		Cases:        NewGormCaseRepository(db),
		Appointments: NewGormAppointmentRepository(db),
		Documents:    NewGormDocumentRepository(db),
		Chat:         NewGormChatRepository(db),
	}
}

// updateAll writes every column of value except its identity and creation
// time. Zero values are written too.
func updateAll(ctx context.Context, db *gorm.DB, value interface{}) error {
	res := db.WithContext(ctx).Model(value).Select("*").Omit("id", "created_at").Updates(value)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	var users []models.User
	if err := q.Order("created_at asc, id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormCaseRepository struct {
	db *gorm.DB
}

func NewGormCaseRepository(db *gorm.DB) *GormCaseRepository {
	return &GormCaseRepository{db: db}
}

func (r *GormCaseRepository) Create(ctx context.Context, c *models.Case) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *GormCaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCaseRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).First(&c, "case_number = ?", caseNumber).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCaseRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Case, error) {
	out := make(map[string]models.Case, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var cases []models.Case
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cases).Error; err != nil {
		return nil, err
	}
	for _, c := range cases {
		out[c.ID] = c
	}
	return out, nil
}

func (r *GormCaseRepository) List(ctx context.Context, filter CaseFilter) ([]models.Case, error) {
	q := r.db.WithContext(ctx).Model(&models.Case{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.StaffID != "" {
		q = q.Where("staff_id = ?", filter.StaffID)
	}
	var cases []models.Case
	if err := q.Order("updated_at desc, id asc").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *GormCaseRepository) Update(ctx context.Context, c *models.Case) error {
	return updateAll(ctx, r.db, c)
}

func (r *GormCaseRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Case{}, id)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.StaffID != "" {
		q = q.Where("staff_id = ?", filter.StaffID)
	}
	if filter.CaseID != "" {
		q = q.Where("case_id = ?", filter.CaseID)
	}
	if filter.Day != nil {
		q = q.Where("scheduled_at >= ? AND scheduled_at < ?", filter.Day.From.UTC(), filter.Day.To.UTC())
	}
	var appointments []models.Appointment
	if err := q.Order("scheduled_at asc, id asc").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *GormAppointmentRepository) ListActiveByStaff(ctx context.Context, staffID string, before time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("staff_id = ? AND status <> ? AND scheduled_at < ?", staffID, models.AppointmentStatusCancelled, before.UTC()).
		Order("scheduled_at asc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *GormAppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	return updateAll(ctx, r.db, a)
}

func (r *GormAppointmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Appointment{}, id)
}

type GormDocumentRepository struct {
	db *gorm.DB
}

func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func (r *GormDocumentRepository) Create(ctx context.Context, d *models.Document) error {
	return translate(r.db.WithContext(ctx).Create(d).Error)
}

func (r *GormDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *GormDocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, error) {
	q := r.db.WithContext(ctx).Model(&models.Document{})
	if filter.CaseID != "" {
		q = q.Where("case_id = ?", filter.CaseID)
	}
	if filter.UploadedBy != "" {
		q = q.Where("uploaded_by = ?", filter.UploadedBy)
	}
	var documents []models.Document
	if err := q.Order("uploaded_at desc, id asc").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *GormDocumentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Document{}, id)
}

type GormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *GormChatRepository) Conversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("(sender = ? AND recipient = ?) OR (sender = ? AND recipient = ?)", a, b, b, a).
		Order("sent_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *GormChatRepository) MarkRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("recipient = ? AND sender = ? AND is_read = ?", recipientID, senderID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
