// Package eventstore contém o único primitivo de persistência usado pelo
// núcleo: chave/valor simples, sequências ordenadas por score, contadores
// atômicos e conjuntos de membros únicos
package eventstore

import (
	"context"
	"errors"
)

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks

// ErrUnavailable indica falha de I/O no armazenamento. O erro é transitório:
// o chamador imediato decide se repete a operação
var ErrUnavailable = errors.New("armazenamento de eventos indisponível")

// Store é o contrato de persistência do núcleo. Increment, AppendOrdered e
// SetAdd precisam ser atômicos sob chamadas concorrentes
type Store interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)

	// AppendOrdered insere value na sequência ordenada por score armazenada
	// sob key. Scores iguais preservam a ordem de inserção
	AppendOrdered(ctx context.Context, key string, score float64, value string) error

	// RangeOrdered lê a fatia [from, to] da sequência, inclusiva nas duas
	// pontas. Use math.Inf para pontas abertas
	RangeOrdered(ctx context.Context, key string, from, to float64) ([]string, error)

	// Increment soma by ao contador numérico em key e retorna o novo valor.
	// Increment com by zero funciona como leitura do contador
	Increment(ctx context.Context, key string, by float64) (float64, error)

	SetAdd(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}
