package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create sequences table
			CREATE TABLE sequences (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				version VARCHAR(50) NOT NULL DEFAULT '1.0',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active')),
				trigger_events JSONB DEFAULT '[]',
				variables JSONB DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_sequences_status ON sequences(status);
			CREATE INDEX idx_sequences_created_at ON sequences(created_at);
			CREATE INDEX idx_sequences_deleted_at ON sequences(deleted_at);

			-- Create sequence_nodes table
			CREATE TABLE sequence_nodes (
				sequence_id VARCHAR(255) NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				kind VARCHAR(50) NOT NULL,
				config JSONB DEFAULT '{}',
				position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
				position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (sequence_id, id)
			);

			CREATE INDEX idx_sequence_nodes_sequence_id ON sequence_nodes(sequence_id);
			CREATE INDEX idx_sequence_nodes_kind ON sequence_nodes(kind);

			-- Create sequence_edges table
			CREATE TABLE sequence_edges (
				sequence_id VARCHAR(255) NOT NULL REFERENCES sequences(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				source_node_id VARCHAR(255) NOT NULL,
				source_port VARCHAR(255) NOT NULL DEFAULT 'main',
				target_node_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (sequence_id, id)
			);

			CREATE INDEX idx_sequence_edges_sequence_id ON sequence_edges(sequence_id);
			CREATE INDEX idx_sequence_edges_source ON sequence_edges(source_node_id);
			CREATE INDEX idx_sequence_edges_target ON sequence_edges(target_node_id);
			CREATE UNIQUE INDEX idx_sequence_edges_unique ON sequence_edges(sequence_id, source_node_id, source_port, target_node_id);
		`,
	}
}
