package domain

import "strings"

// WalletProfile es el perfil conocido de una dirección que seguimos.
type WalletProfile struct {
	Address  string
	Username string
	PnL      string // PnL histórico reportado, texto libre ("$866K", "N/A")
}

// WalletDirectory es un dataset de solo lectura dirección → perfil.
// Se inyecta donde haga falta (señal de whale, links de perfil); nunca es
// una tabla global mutable.
type WalletDirectory struct {
	profiles map[string]WalletProfile
}

// NewWalletDirectory construye el directorio a partir de los perfiles dados.
// Las direcciones se normalizan a minúsculas.
func NewWalletDirectory(profiles []WalletProfile) *WalletDirectory {
	m := make(map[string]WalletProfile, len(profiles))
	for _, p := range profiles {
		p.Address = strings.ToLower(p.Address)
		m[p.Address] = p
	}
	return &WalletDirectory{profiles: m}
}

// Lookup devuelve el perfil de la dirección, probando primero el match
// completo y después por prefijo (10 chars). ok=false si no se conoce.
func (d *WalletDirectory) Lookup(address string) (WalletProfile, bool) {
	addr := strings.ToLower(address)
	if p, ok := d.profiles[addr]; ok {
		return p, true
	}
	if len(addr) >= 10 {
		prefix := addr[:10]
		for a, p := range d.profiles {
			if strings.HasPrefix(a, prefix) {
				return p, true
			}
		}
	}
	return WalletProfile{}, false
}

// ProfileLink devuelve la URL del perfil público de la dirección.
func (d *WalletDirectory) ProfileLink(address string) string {
	if p, ok := d.Lookup(address); ok && p.Username != "" {
		return "https://polymarket.com/@" + p.Username
	}
	return "https://polymarket.com/profile/" + address
}

// Len devuelve el número de perfiles cargados.
func (d *WalletDirectory) Len() int {
	return len(d.profiles)
}
