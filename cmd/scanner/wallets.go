package main

import "github.com/alejandrodnm/polyhedge/internal/domain"

// knownWallets son direcciones de traders rentables observados en Polymarket.
// Una apuesta de cualquiera de ellas cuenta como señal de whale sin importar
// el tamaño.
var knownWallets = []domain.WalletProfile{
	{Address: "0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d", Username: "gabagool22", PnL: "$866K"},
	{Address: "0xe9c6312464b52aa3eff13d822b003282075995c9", Username: "kingofcoinflips", PnL: "$508K"},
	{Address: "0x4ffe49ba2a4cae123536a8af4fda48faeb609f71", Username: "planktonXD", PnL: "$106K"},
	{Address: "0xd0bde12c58772999c61c2b8e0d31ba608c52a5d6", Username: "Demphu.finite", PnL: "$91.6K"},
	{Address: "0x70ec235a31eb35f243e2618d6ea3b5b8962bbb5d", Username: "vague-sourdough", PnL: "$59.9K"},
	{Address: "0x61276aba49117fd9299707d5d573652949d5c977", Username: "MuseumOfBees", PnL: "$60.9K"},
	{Address: "0x4460bf2c0aa59db412a6493c2c08970797b62970", Username: "5min_PVP", PnL: "$87K"},
	{Address: "0xc3e47dd79346216a72d1634fc8ed13d20658e7f9", Username: "SpotTheAnamoly", PnL: "N/A"},
	{Address: "0x594edb9112f526fa6a80b8f858a6379c8a2c1c11", Username: "WeatherKing", PnL: "$30K"},
	{Address: "0x36ae97e6d0e5d3624a1ac070dce1f1b0c26d1a49", Username: "mqog1m", PnL: "$15.5K"},
}
