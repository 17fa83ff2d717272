package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_core_tables",
			Up: `
				-- Usuários do TeamSync
				CREATE TABLE users (
					id SERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					password_hash VARCHAR(255) NOT NULL,
					designation VARCHAR(255),
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				-- Projetos
				CREATE TABLE projects (
					id SERIAL PRIMARY KEY,
					title VARCHAR(255) NOT NULL,
					description TEXT,
					created_by INTEGER REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				-- Tasks
				CREATE TABLE tasks (
					id SERIAL PRIMARY KEY,
					title VARCHAR(255) NOT NULL,
					description TEXT,
					status VARCHAR(50) NOT NULL DEFAULT 'pending',
					priority VARCHAR(20),
					time_estimate VARCHAR(50),
					project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
					parent_task_id INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
					assigned_to INTEGER REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);
			`,
			Down: `
				DROP TABLE IF EXISTS tasks;
				DROP TABLE IF EXISTS projects;
				DROP TABLE IF EXISTS users;
			`,
		},
		{
			Version: 2,
			Name:    "create_task_indexes",
			Up: `
				-- Consultas de exemplos e do agente
				CREATE INDEX idx_tasks_project_id ON tasks(project_id);
				CREATE INDEX idx_tasks_parent_task_id ON tasks(parent_task_id) WHERE parent_task_id IS NOT NULL;
				CREATE INDEX idx_tasks_assigned_to ON tasks(assigned_to) WHERE assigned_to IS NOT NULL;

				-- Exemplos de few-shot exigem prioridade e estimativa preenchidas
				CREATE INDEX idx_tasks_examples ON tasks(project_id, id)
					WHERE priority IS NOT NULL AND time_estimate IS NOT NULL;
			`,
			Down: `
				DROP INDEX IF EXISTS idx_tasks_examples;
				DROP INDEX IF EXISTS idx_tasks_assigned_to;
				DROP INDEX IF EXISTS idx_tasks_parent_task_id;
				DROP INDEX IF EXISTS idx_tasks_project_id;
			`,
		},
		{
			Version: 3,
			Name:    "add_task_status_constraint",
			Up: `
				ALTER TABLE tasks ADD CONSTRAINT chk_tasks_priority
					CHECK (priority IS NULL OR priority IN ('low', 'medium', 'high', 'urgent'));
			`,
			Down: `
				ALTER TABLE tasks DROP CONSTRAINT IF EXISTS chk_tasks_priority;
			`,
		},
	}
}
