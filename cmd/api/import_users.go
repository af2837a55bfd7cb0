package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

func importUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-users [csv]",
		Short: "Upsert users from an email,name,role CSV into the bound store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogger(cfg.LogLevel)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer f.Close()

			st, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.close(cmd.Context())
			if st.binding.Kind() == repositories.KindLocal {
				return errors.New("primary store unreachable, refusing to import into the local fallback")
			}

			imported, skipped, err := importUsers(cmd.Context(), st.binding, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported=%d skipped=%d\n", imported, skipped)
			return nil
		},
	}
}

// importUsers reads a header row naming at least email and name columns; role is optional.
// Malformed rows are skipped; existing users keep their coins.
func importUsers(ctx context.Context, users repositories.UserRepository, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, errors.New("CSV file is empty")
		}
		return 0, 0, fmt.Errorf("failed to parse CSV header: %w", err)
	}
	emailIdx := findColumnIndex(header, "email", "e-mail", "email address")
	nameIdx := findColumnIndex(header, "name", "full name", "fullname")
	roleIdx := findColumnIndex(header, "role", "type")
	if emailIdx < 0 || nameIdx < 0 {
		return 0, 0, errors.New("CSV header must contain email and name columns")
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to parse CSV line %d: %w", line, err)
		}

		email := strings.ToLower(column(record, emailIdx))
		name := column(record, nameIdx)
		if !strings.Contains(email, "@") || name == "" {
			slog.Warn("Skipping malformed user record", "line", line)
			skipped++
			continue
		}
		role := strings.ToLower(column(record, roleIdx))
		if role == "" {
			role = models.RoleStudent
		}

		_, err = users.UpsertUser(ctx, &models.User{Email: email, Name: name, Role: role, IsActive: true})
		if err != nil {
			slog.Warn("Failed to upsert user", "line", line, "error", err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames ...string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if name == h {
				return i
			}
		}
	}
	return -1
}

func column(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
