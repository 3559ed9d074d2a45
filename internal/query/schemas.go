package query

// Schemas declares the column whitelist for every table a repository is
// allowed to build dynamic queries against. Adding a column to a table
// without adding it here means Builder will refuse to reference it.

var TasksSchema = Schema{
	Table: "tasks",
	Columns: map[string]bool{
		"id": false, "board_id": false, "column_id": false, "parent_task_id": false,
		"title": true, "description": true, "status": false, "priority": false,
		"priority_score": false, "due_date": false, "assignee": false,
		"estimated_hours": false, "position": false, "content_hash": false,
		"created_at": false, "updated_at": false, "archived": false,
		"is_blocked": false, "blocked_by_count": false,
	},
}

var BoardsSchema = Schema{
	Table: "boards",
	Columns: map[string]bool{
		"id": false, "name": true, "description": true, "created_at": false, "archived": false,
	},
}

var ColumnsSchema = Schema{
	Table: "columns",
	Columns: map[string]bool{
		"id": false, "board_id": false, "name": true, "position": false, "color": false,
	},
}

var DependenciesSchema = Schema{
	Table: "dependencies",
	Columns: map[string]bool{
		"task_id": false, "depends_on_task_id": false, "type": false, "created_at": false,
	},
}

var NotesSchema = Schema{
	Table: "notes",
	Columns: map[string]bool{
		"id": false, "task_id": false, "board_id": false, "content": true,
		"category": false, "pinned": false, "created_at": false, "updated_at": false,
	},
}

var TagsSchema = Schema{
	Table: "tags",
	Columns: map[string]bool{
		"id": false, "name": true, "slug": false, "color": false,
		"parent_id": false, "path": true, "usage_count": false,
	},
}

var RepoMappingsSchema = Schema{
	Table: "repo_mappings",
	Columns: map[string]bool{
		"id": false, "pattern": true, "pattern_type": false, "board_id": false,
		"priority": false, "created_at": false,
	},
}

var BackupsSchema = Schema{
	Table: "backups",
	Columns: map[string]bool{
		"id": false, "name": true, "type": false, "created_at": false, "size_bytes": false,
		"checksum": false, "status": false, "retention_days": false,
		"parent_backup_id": false, "path": false,
	},
}

var ApiKeysSchema = Schema{
	Table: "api_keys",
	Columns: map[string]bool{
		"id": false, "name": true, "key_hash": false,
		"created_at": false, "expires_at": false, "last_used_at": false,
	},
}
