package main

import (
	"fmt"
	"log"

	"golang-wa-dispatch/internal/adapters/db/sqlstore"
	"golang-wa-dispatch/internal/bootstrap"
	"golang-wa-dispatch/internal/config"
	"golang-wa-dispatch/internal/ports"
)

func main() {
	conf := config.FromEnv()

	fmt.Println("🔗 Connecting to database...")
	fmt.Println("Driver:", conf.DatabaseDriver)

	db, err := bootstrap.OpenDB(conf)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer sqlstore.Close(db)

	fmt.Println("✅ Connected to database")
	fmt.Println("🔄 Running migrations...")

	if err := sqlstore.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	fmt.Println("✅ Migration complete!")
	fmt.Println("")
	fmt.Println("📊 Checking tables...")

	tables := []string{
		ports.TableGatewayCatalog,
		ports.TableTenantGateways,
		ports.TableLegacySettings,
		ports.TableDeliveryLogs,
	}
	for _, table := range tables {
		mark := "✅"
		if !db.Migrator().HasTable(table) {
			mark = "⚠️ "
		}
		fmt.Printf("  %s %s\n", mark, table)
	}

	fmt.Println("")
	fmt.Println("🎉 Database ready!")
}
