package monitor

import "time"

type Status struct {
	PostgreSQL  bool      `json:"postgresql"`
	Redis       bool      `json:"redis"`
	ObjectStore bool      `json:"object_store"`
	Cleanup     bool      `json:"cleanup_queue"`
	CleanupSize int       `json:"cleanup_queue_size"`
	LastCheck   time.Time `json:"last_check"`
}
