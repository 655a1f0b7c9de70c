package db

// Table names.
const (
	tableTopic   = "topic"
	tableTrail   = "trail"
	tableSession = "user_session"
)

// SchemaSQL defines the exploration tables.
const SchemaSQL = `
    -- ==========================================================================
    -- TOPIC TABLE
    -- ==========================================================================
    -- Record id is derived from the lower-cased title so UPSERT is the uniqueness check.
    DEFINE TABLE IF NOT EXISTS topic SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON topic TYPE string;
    DEFINE FIELD IF NOT EXISTS title_key ON topic TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON topic TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS category ON topic TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS difficulty ON topic TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS tags ON topic TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS embedding ON topic TYPE option<array<float>>;
    DEFINE FIELD IF NOT EXISTS exploration_count ON topic TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created_at ON topic TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON topic TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS topic_title_key ON topic FIELDS title_key UNIQUE;
    DEFINE INDEX IF NOT EXISTS topic_category_difficulty ON topic FIELDS category, difficulty;
    DEFINE INDEX IF NOT EXISTS topic_exploration_count ON topic FIELDS exploration_count;
    DEFINE ANALYZER IF NOT EXISTS topic_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS topic_title_ft ON topic FIELDS title FULLTEXT ANALYZER topic_analyzer BM25;
    DEFINE INDEX IF NOT EXISTS topic_description_ft ON topic FIELDS description FULLTEXT ANALYZER topic_analyzer BM25;

    -- ==========================================================================
    -- TRAIL TABLE (append-only)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS trail SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS topic_id ON trail TYPE string;
    DEFINE FIELD IF NOT EXISTS topic ON trail TYPE string;
    DEFINE FIELD IF NOT EXISTS summary ON trail TYPE string;
    DEFINE FIELD IF NOT EXISTS nodes ON trail TYPE array<object> FLEXIBLE;
    -- Must REMOVE then DEFINE so FLEXIBLE applies to nested node objects.
    REMOVE FIELD IF EXISTS nodes.* ON trail;
    DEFINE FIELD nodes.* ON trail TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS total_connections ON trail TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS max_depth ON trail TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS generated_at ON trail TYPE datetime;
    DEFINE FIELD IF NOT EXISTS ai_model ON trail TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS processing_time ON trail TYPE int DEFAULT 0;

    DEFINE INDEX IF NOT EXISTS trail_topic_id ON trail FIELDS topic_id;
    DEFINE INDEX IF NOT EXISTS trail_generated_at ON trail FIELDS generated_at;

    -- ==========================================================================
    -- USER SESSION TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user_session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON user_session TYPE string;
    DEFINE FIELD IF NOT EXISTS topics_explored ON user_session TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS trails_generated ON user_session TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS total_exploration_time ON user_session TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS curiosity_score ON user_session TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS achievements ON user_session TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON user_session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS last_active_at ON user_session TYPE datetime DEFAULT time::now();
`
