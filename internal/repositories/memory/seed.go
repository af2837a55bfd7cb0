package memory

import (
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
)

const day = 24 * time.Hour

func (s *Store) seed() {
	now := s.now()

	users := []models.User{
		{ID: "1", Email: "admin@masterstudent.com", Name: "Admin User", Role: models.RoleAdmin, CreatedAt: now},
		{ID: "2", Email: "john.doe@student.com", Name: "John Doe", Role: models.RoleStudent, CreatedAt: now.Add(-1 * day)},
		{ID: "3", Email: "jane.smith@topper.com", Name: "Jane Smith", Role: models.RoleTopper, CreatedAt: now.Add(-2 * day),
			CoinBalance: 1250, TotalCoinsEarned: 1250},
		{ID: "4", Email: "mike.johnson@student.com", Name: "Mike Johnson", Role: models.RoleStudent, CreatedAt: now.Add(-3 * day)},
		{ID: "5", Email: "sarah.wilson@topper.com", Name: "Sarah Wilson", Role: models.RoleTopper, CreatedAt: now.Add(-4 * day),
			CoinBalance: 890, TotalCoinsEarned: 890},
	}
	for i := range users {
		u := users[i]
		u.IsActive = true
		u.UpdatedAt = u.CreatedAt
		s.users[u.ID] = &u
	}

	notes := []models.Note{
		{ID: "1", UserID: "3", Title: "Physics - Kinematics Notes", Subject: "Physics", Status: models.NoteStatusApproved,
			Downloads: 45, UploaderName: "Jane Smith", UploaderEmail: "jane.smith@topper.com", CreatedAt: now.Add(-1 * day)},
		{ID: "2", UserID: "5", Title: "Mathematics - Calculus Basics", Subject: "Mathematics", Status: models.NoteStatusPending,
			UploaderName: "Sarah Wilson", UploaderEmail: "sarah.wilson@topper.com", CreatedAt: now.Add(-12 * time.Hour)},
		{ID: "3", UserID: "3", Title: "Chemistry - Organic Compounds", Subject: "Chemistry", Status: models.NoteStatusApproved,
			Downloads: 32, UploaderName: "Jane Smith", UploaderEmail: "jane.smith@topper.com", CreatedAt: now.Add(-2 * day)},
	}
	for i := range notes {
		n := notes[i]
		n.UpdatedAt = n.CreatedAt
		s.notes[n.ID] = &n
	}
}
