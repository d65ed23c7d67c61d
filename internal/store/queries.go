package store

const (
	createPostsTable = `CREATE TABLE IF NOT EXISTS posts (
        id SERIAL PRIMARY KEY,
        mongo_id TEXT UNIQUE,
        content TEXT NOT NULL,
        rooms DOUBLE PRECISION,
        size DOUBLE PRECISION,
        price DOUBLE PRECISION,
        created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`
	insertExtractedPost = `INSERT INTO posts (mongo_id, content, rooms, size, price)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (mongo_id) DO NOTHING`
	countExtractedPosts = `SELECT COUNT(*) FROM posts`
)
