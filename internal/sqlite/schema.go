package sqlite

// Schema DDL. Descriptors keep their full JSON next to the columns used for
// lookups so members and other compiler fields survive a round trip.
const (
	createLayouts = `CREATE TABLE layouts (
    layout_id TEXT PRIMARY KEY,
    chain_id INTEGER NOT NULL,
    address TEXT NOT NULL,
    contract_name TEXT NOT NULL,
    source TEXT NOT NULL,
    has_types INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`

	createLayoutTypes = `CREATE TABLE layout_types (
    layout_id TEXT NOT NULL,
    type_id TEXT NOT NULL,
    label TEXT NOT NULL,
    encoding TEXT NOT NULL,
    number_of_bytes TEXT NOT NULL,
    descriptor TEXT NOT NULL,
    PRIMARY KEY (layout_id, type_id),
    FOREIGN KEY (layout_id) REFERENCES layouts(layout_id) ON DELETE CASCADE
);`

	createLayoutItems = `CREATE TABLE layout_items (
    layout_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    slot TEXT NOT NULL,
    byte_offset INTEGER NOT NULL,
    label TEXT NOT NULL,
    type_id TEXT NOT NULL,
    contract TEXT NOT NULL,
    ast_id INTEGER NOT NULL,
    PRIMARY KEY (layout_id, position),
    FOREIGN KEY (layout_id) REFERENCES layouts(layout_id) ON DELETE CASCADE
);`
)

// Index DDL.
const (
	idxLayoutsChainAddress = `CREATE UNIQUE INDEX idx_layouts_chain_address ON layouts(chain_id, address);`
	idxLayoutsCreated      = `CREATE INDEX idx_layouts_created ON layouts(created_at, layout_id);`
	idxLayoutItemsType     = `CREATE INDEX idx_layout_items_type ON layout_items(layout_id, type_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createLayouts,
	createLayoutTypes,
	createLayoutItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxLayoutsChainAddress,
	idxLayoutsCreated,
	idxLayoutItemsType,
}
