// Package database keeps the run journal of the bootstrapper.
//
// Connect opens a gorm connection to MySQL or SQLite. The Journal stores one Run row per
// bootstrap run, plus the last known progress of every area and the warnings recorded so
// far, so dashboards can poll a run while it executes and inspect it afterwards.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	journal := database.NewJournal(db)
//	_ = journal.Migrate()
//	run, _ := journal.StartRun(ctx, "my-shop", "shops/demo.yaml")
//	_ = journal.RecordSnapshot(ctx, run.ID, b.Status())
//	_ = journal.FinishRun(ctx, run.ID, time.Now(), elapsed, nil)
//
// The journal is optional. The CLI and the server run without it when the connection fails.
package database
