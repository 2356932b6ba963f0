package entity

// Scopes de contadores locales por comercio.
const (
	ScopeProdutos       = "produtos"
	ScopeFornecedores   = "fornecedores"
	ScopeCategorias     = "categorias"
	ScopeUnidadeMedidas = "unidade_medidas"
	ScopeMovEntrada     = "mov_entrada"
	ScopeMovSaida       = "mov_saida"
)

// IsValidScope indica si scope pertenece al conjunto permitido.
func IsValidScope(scope string) bool {
	switch scope {
	case ScopeProdutos, ScopeFornecedores, ScopeCategorias, ScopeUnidadeMedidas, ScopeMovEntrada, ScopeMovSaida:
		return true
	}
	return false
}

// MovementScope scope del contador de códigos para un tipo de movimentação.
func MovementScope(movementType string) string {
	return "mov_" + movementType
}
