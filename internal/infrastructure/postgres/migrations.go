package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Migration cambio de esquema versionado.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations esquema completo en orden. Nunca reescribir una versión ya publicada: añadir otra.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "usuarios, empresas y perfiles",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id            UUID PRIMARY KEY,
					email         TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE TABLE IF NOT EXISTS organizations (
					id                    UUID PRIMARY KEY,
					name                  TEXT NOT NULL,
					member_limit          INT NOT NULL DEFAULT 5 CHECK (member_limit >= 0),
					subscription_end_date TIMESTAMPTZ,
					credits               NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (credits >= 0),
					created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE TABLE IF NOT EXISTS profiles (
					id                    UUID PRIMARY KEY,
					email                 TEXT NOT NULL UNIQUE,
					full_name             TEXT NOT NULL DEFAULT '',
					role                  TEXT NOT NULL DEFAULT 'normal' CHECK (role IN
						('normal', 'premium_individual', 'premium_corporate', 'corporate_chief', 'corporate_staff', 'admin')),
					organization_id       UUID REFERENCES organizations(id) ON DELETE SET NULL,
					subscription_end_date TIMESTAMPTZ,
					permissions           JSONB NOT NULL DEFAULT '{}',
					created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_profiles_organization_id ON profiles(organization_id);
				-- un solo dueño por empresa
				CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_one_owner
					ON profiles(organization_id) WHERE role = 'premium_corporate';
			`,
		},
		{
			Version:     2,
			Description: "documentos y definiciones",
			SQL: `
				CREATE TABLE IF NOT EXISTS documents (
					id                   UUID PRIMARY KEY,
					uploader_id          UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					organization_id      UUID REFERENCES organizations(id) ON DELETE SET NULL,
					type_def_id          TEXT NOT NULL,
					location_def_id      TEXT,
					title                TEXT NOT NULL,
					description          TEXT NOT NULL DEFAULT '',
					acquisition_date     TIMESTAMPTZ,
					is_indefinite        BOOLEAN NOT NULL DEFAULT false,
					expiry_date          TIMESTAMPTZ,
					application_deadline TIMESTAMPTZ,
					reminder_days        INT NOT NULL DEFAULT 0 CHECK (reminder_days >= 0),
					reminder_based_on    TEXT NOT NULL DEFAULT '',
					is_archived          BOOLEAN NOT NULL DEFAULT false,
					file_url             TEXT NOT NULL DEFAULT '',
					file_path            TEXT NOT NULL DEFAULT '',
					file_type            TEXT NOT NULL DEFAULT '',
					file_size            BIGINT NOT NULL DEFAULT 0,
					created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_documents_uploader ON documents(uploader_id, is_archived);
				CREATE INDEX IF NOT EXISTS idx_documents_organization ON documents(organization_id, is_archived);
				CREATE INDEX IF NOT EXISTS idx_documents_versions ON documents(type_def_id, location_def_id) WHERE is_archived;

				CREATE TABLE IF NOT EXISTS user_definitions (
					id         UUID PRIMARY KEY,
					user_id    UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					category   TEXT NOT NULL CHECK (category IN ('doc_type', 'location')),
					label      TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_user_definitions_user ON user_definitions(user_id, category);
			`,
		},
		{
			Version:     3,
			Description: "invitaciones, notificaciones y chat",
			SQL: `
				CREATE TABLE IF NOT EXISTS invitations (
					id              UUID PRIMARY KEY,
					organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
					code            TEXT NOT NULL UNIQUE,
					email           TEXT,
					status          TEXT NOT NULL DEFAULT 'unused' CHECK (status IN ('unused', 'accepted', 'rejected', 'cancelled')),
					is_used         BOOLEAN GENERATED ALWAYS AS (status <> 'unused') STORED,
					used_by         UUID REFERENCES profiles(id) ON DELETE SET NULL,
					created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_invitations_unused ON invitations(organization_id) WHERE status = 'unused';
				CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(organization_id, lower(email)) WHERE status = 'unused';

				CREATE TABLE IF NOT EXISTS notifications (
					id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id    UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					title      TEXT NOT NULL,
					message    TEXT NOT NULL DEFAULT '',
					type       TEXT NOT NULL DEFAULT 'info',
					metadata   JSONB NOT NULL DEFAULT '{}',
					is_read    BOOLEAN NOT NULL DEFAULT false,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);

				CREATE TABLE IF NOT EXISTS company_messages (
					id              UUID PRIMARY KEY,
					organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
					sender_id       UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					receiver_id     UUID REFERENCES profiles(id) ON DELETE CASCADE,
					message         TEXT NOT NULL,
					document_id     UUID REFERENCES documents(id) ON DELETE SET NULL,
					document_title  TEXT NOT NULL DEFAULT '',
					created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
				);

				CREATE INDEX IF NOT EXISTS idx_company_messages_general
					ON company_messages(organization_id, created_at DESC) WHERE receiver_id IS NULL;
				CREATE INDEX IF NOT EXISTS idx_company_messages_direct
					ON company_messages(organization_id, sender_id, receiver_id, created_at DESC);
			`,
		},
		{
			Version:     4,
			Description: "RLS de documentos para clientes con acceso directo",
			// El servicio conecta como dueño de las tablas y no pasa por estas políticas;
			// aplican a roles que lean la base directamente con app.user_id fijado por sesión.
			SQL: `
				CREATE OR REPLACE FUNCTION app_current_user() RETURNS UUID
				LANGUAGE sql STABLE AS $$
					SELECT NULLIF(current_setting('app.user_id', true), '')::uuid
				$$;

				CREATE OR REPLACE FUNCTION app_can_view_document(doc_uploader UUID, doc_org UUID) RETURNS BOOLEAN
				LANGUAGE sql STABLE AS $$
					SELECT EXISTS (
						SELECT 1 FROM profiles p
						WHERE p.id = app_current_user()
						  AND (
							p.role = 'admin'
							OR p.id = doc_uploader
							OR (
								doc_org IS NOT NULL
								AND p.organization_id = doc_org
								AND (
									p.role = 'premium_corporate'
									OR (p.role = 'corporate_chief' AND COALESCE((p.permissions->>'can_view_team_docs')::boolean, false))
								)
							)
						  )
					)
				$$;

				ALTER TABLE documents ENABLE ROW LEVEL SECURITY;
				DROP POLICY IF EXISTS documents_select ON documents;
				CREATE POLICY documents_select ON documents FOR SELECT
					USING (app_can_view_document(uploader_id, organization_id));
			`,
		},
	}
}

// Migrate aplica las migraciones pendientes, cada una en su transacción.
func Migrate(ctx context.Context, db Querier, log zerolog.Logger) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return wrapErr("create schema_migrations", err)
	}

	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return wrapErr("list migrations", err)
	}
	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return wrapErr("scan migration", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return wrapErr("list migrations", err)
	}

	for _, m := range Migrations() {
		if applied[m.Version] {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		log.Info().Int("version", m.Version).Str("description", m.Description).Msg("migración aplicada")
	}
	return nil
}

func apply(ctx context.Context, db Querier, m Migration) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return wrapErr("begin migration", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("migración %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.Version, m.Description,
	); err != nil {
		return wrapErr("record migration", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit migration", err)
	}
	return nil
}
