package forum

import "forum-indexer/feature/forum/content"

// Config holds configuration for the materialization engine.
type Config struct {
	// Enabled gates the feature in the loader.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Network is the ledger network id, the first component of every
	// entity key.
	Network int `mapstructure:"network" default:"1"`
	// StartingRating is assigned on the first rating-relevant event for a
	// (user, community) pair with no prior authoritative record.
	StartingRating int `mapstructure:"starting_rating" default:"10"`
	// Snapshot is the path of the ledger state snapshot backing the
	// authoritative accessor.
	Snapshot string `mapstructure:"snapshot" default:"snapshot.json"`
	// Policy selects which lifecycle transitions refresh the author's
	// community rating.
	Policy Policy `mapstructure:"policy"`
	// Content configures the content resolver.
	Content content.Config `mapstructure:"content"`
}

// Policy is the rating refresh trigger set. The source history shows several
// mutually inconsistent trigger sets, so the trigger per transition is
// configuration rather than hard-coded; defaults enable the most complete
// variant (refresh on every authored-content lifecycle transition).
type Policy struct {
	RefreshOnCreate    bool `mapstructure:"refresh_on_create" default:"true"`
	RefreshOnEdit      bool `mapstructure:"refresh_on_edit" default:"true"`
	RefreshOnDelete    bool `mapstructure:"refresh_on_delete" default:"true"`
	RefreshOnVote      bool `mapstructure:"refresh_on_vote" default:"true"`
	RefreshOnBestReply bool `mapstructure:"refresh_on_best_reply" default:"true"`
}
