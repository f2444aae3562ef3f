// Package channels contém os adaptadores de canal consumidos pelo
// orquestrador de campanhas. O núcleo só conhece o contrato Send no estilo
// settle: um erro do adaptador vira um resultado "rejected" do canal, nunca
// derruba o lançamento
package channels

import "context"

//go:generate mockgen -source=adapter.go -destination=mocks/adapter.go -package=mocks

// Nomes dos canais suportados pela instalação padrão
const (
	ChannelEmail        = "email"
	ChannelAds          = "ads"
	ChannelNotification = "notification"
)

// Adapter é o contrato de capacidade de um canal: recebe uma ação e um
// objeto de configuração fracamente tipado e devolve o resultado do envio.
// O adaptador não interpreta campos que não conhece; tudo é repassado ao
// provedor externo
type Adapter interface {
	Name() string
	Send(ctx context.Context, action string, cfg map[string]any) (map[string]any, error)
}
