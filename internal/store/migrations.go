package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS workers (
	id           TEXT PRIMARY KEY,
	username     TEXT NOT NULL UNIQUE,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	position_id  TEXT REFERENCES positions(id) ON DELETE SET NULL,
	is_staff     INTEGER NOT NULL DEFAULT 0 CHECK(is_staff IN (0, 1)),
	is_superuser INTEGER NOT NULL DEFAULT 0 CHECK(is_superuser IN (0, 1)),
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_types (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS teams (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	project_id TEXT REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS team_members (
	team_id   TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
	PRIMARY KEY (team_id, worker_id)
);

CREATE TABLE IF NOT EXISTS tags (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	deadline     DATETIME NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	priority     TEXT NOT NULL DEFAULT 'Medium'
		CHECK(priority IN ('Urgent', 'High', 'Medium', 'Low')),
	task_type_id TEXT REFERENCES task_types(id) ON DELETE SET NULL,
	project_id   TEXT REFERENCES projects(id) ON DELETE CASCADE,
	created_by   TEXT REFERENCES workers(id) ON DELETE SET NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id   TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
	PRIMARY KEY (task_id, worker_id)
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tag_id  TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (task_id, tag_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_log (
	id            TEXT PRIMARY KEY,
	task_id       TEXT REFERENCES tasks(id) ON DELETE CASCADE,
	user_id       TEXT REFERENCES workers(id) ON DELETE SET NULL,
	activity_type TEXT NOT NULL CHECK(activity_type IN (
		'created', 'updated', 'completed', 'reopened',
		'assigned', 'unassigned', 'commented', 'deleted')),
	description   TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id                TEXT PRIMARY KEY,
	recipient_id      TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
	notification_type TEXT NOT NULL CHECK(notification_type IN (
		'task_assigned', 'task_completed', 'task_commented',
		'deadline_approaching', 'task_updated')),
	title             TEXT NOT NULL,
	message           TEXT NOT NULL,
	task_id           TEXT REFERENCES tasks(id) ON DELETE CASCADE,
	is_read           INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_is_completed ON tasks(is_completed);
CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);

CREATE INDEX IF NOT EXISTS idx_task_assignees_worker ON task_assignees(worker_id);
CREATE INDEX IF NOT EXISTS idx_comments_task_id ON comments(task_id);

CREATE INDEX IF NOT EXISTS idx_activity_log_task_id ON activity_log(task_id);
CREATE INDEX IF NOT EXISTS idx_activity_log_created ON activity_log(created_at);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(is_read);
CREATE INDEX IF NOT EXISTS idx_notifications_task_id ON notifications(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
