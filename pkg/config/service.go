package config

// Settings is the subset of the configuration that is safe to expose over the
// API.
type Settings struct {
	IdentifierCacheSize  int    `json:"identifier_cache_size"`
	SearchRebuildOnStart bool   `json:"search_rebuild_on_start"`
	SearchSyncQueueSize  int    `json:"search_sync_queue_size"`
	SearchSyncTimeout    string `json:"search_sync_timeout"`
	SearchSyncWorkers    int    `json:"search_sync_workers"`
	SearchIndexInMemory  bool   `json:"search_index_in_memory"`
}

type Service struct {
	config *Config
}

func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

func (s *Service) RetrieveSettings() *Settings {
	return &Settings{
		IdentifierCacheSize:  s.config.IdentifierCacheSize,
		SearchRebuildOnStart: s.config.SearchRebuildOnStart,
		SearchSyncQueueSize:  s.config.SearchSyncQueueSize,
		SearchSyncTimeout:    s.config.SearchSyncTimeout.String(),
		SearchSyncWorkers:    s.config.SearchSyncWorkers,
		SearchIndexInMemory:  s.config.SearchIndexPath == "",
	}
}
