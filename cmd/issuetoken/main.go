// issuetoken emite un JWT de operador firmado con JWT_SECRET, para llamar a las rutas de escritura.
//
// Uso: go run ./cmd/issuetoken -sub maria -role operator [-minutes 60]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/jwt"
)

func main() {
	sub := flag.String("sub", "", "identificador del operador (claim sub)")
	role := flag.String("role", jwt.RoleOperator, "rol: admin | operator | viewer")
	minutes := flag.Int("minutes", 0, "validez en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if !cfg.AuthEnabled() {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está configurado")
		os.Exit(1)
	}
	switch *role {
	case jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer:
	default:
		fmt.Fprintf(os.Stderr, "Rol inválido: %q\n", *role)
		os.Exit(2)
	}
	exp := *minutes
	if exp <= 0 {
		exp = cfg.JWT.Expiration
	}

	token, err := jwt.Generate(cfg.JWT.Secret, *sub, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
