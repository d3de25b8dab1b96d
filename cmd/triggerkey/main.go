// Command triggerkey prints a fresh scheduler trigger key and the bcrypt hash to configure.
package main

import (
	"fmt"
	"log"

	"github.com/hisworks-api/internal/pkg/token"
)

func main() {
	key, hash, err := token.NewTriggerKey()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("X-Trigger-Key: %s\nTRIGGER_KEY_HASH=%s\n", key, hash)
}
