// Command main runs the database seeder for the allocation API.
package main

import (
	"flag"
	"log"

	"github.com/Matias7xx/adm-pcpb-sub000/internal/config"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/database"
	"github.com/Matias7xx/adm-pcpb-sub000/internal/seed"
)

func main() {
	numDormitories := flag.Int("dormitories", 6, "Number of dormitories to create")
	numStaff := flag.Int("staff", 20, "Number of staff reservations to create")
	numVisitors := flag.Int("visitors", 10, "Number of visitor reservations to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log generated entities without writing")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d dormitories, %d staff, %d visitors, clean=%v\n",
		*numDormitories, *numStaff, *numVisitors, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumDormitories: *numDormitories,
		NumStaff:       *numStaff,
		NumVisitors:    *numVisitors,
		ShouldClean:    *shouldClean,
		DryRun:         *dryRun,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
}
