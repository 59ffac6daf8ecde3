// epitopeweb serves the binders and regions saved by epitopebinders -db as
// JSON.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/carbocation/epitopes/compileinfoprint"
	"github.com/carbocation/epitopes/resultdb"
)

var global *Global

func main() {
	dbPath := flag.String("db", "", "sqlite database written by epitopebinders -db.")
	port := flag.Int("port", 9019, "Port for HTTP server")
	flag.Parse()

	if *dbPath == "" {
		flag.PrintDefaults()
		return
	}

	db, err := resultdb.Open(*dbPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer db.Close()

	global = &Global{
		Site: "Epitopes",
		log:  log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		db:   db,
	}

	global.log.Println("Starting HTTP server on port", *port)
	if err := http.ListenAndServe(fmt.Sprintf(`:%d`, *port), router(global)); err != nil {
		global.log.Println(err)
		os.Exit(1)
	}
}
