// Command token emite un JWT de desarrollo firmado con JWT_SECRET para probar la API.
//
//	go run ./cmd/token -user u-1 -role manager
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user_id del token (performed_by en los movimientos)")
	role := flag.String("role", jwt.RoleAdmin, "rol: admin, manager o user")
	minutes := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET vacío")
		os.Exit(1)
	}
	switch *role {
	case jwt.RoleAdmin, jwt.RoleManager, jwt.RoleUser:
	default:
		fmt.Fprintln(os.Stderr, "rol desconocido:", *role)
		os.Exit(2)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
