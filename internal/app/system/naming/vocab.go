// internal/app/system/naming/vocab.go
package naming

// Fixed vocabularies for generated profile names. The pair space
// (96 x 96) times the 9000-value hash suffix keeps collisions rare
// enough that the re-roll loop effectively never spins.
var adjectives = []string{
	"Able", "Agile", "Amber", "Ample", "Azure", "Bold", "Brave", "Breezy",
	"Bright", "Brisk", "Calm", "Candid", "Cheery", "Chief", "Civic", "Clever",
	"Cosmic", "Cozy", "Crisp", "Daring", "Dapper", "Deft", "Eager", "Early",
	"Earnest", "Easy", "Fable", "Fair", "Famous", "Fancy", "Fleet", "Fluent",
	"Fond", "Frank", "Free", "Fresh", "Gentle", "Giddy", "Glad", "Golden",
	"Good", "Grand", "Happy", "Hardy", "Hearty", "Honest", "Humble", "Ideal",
	"Jolly", "Jovial", "Keen", "Kind", "Lively", "Loyal", "Lucid", "Lucky",
	"Mellow", "Merry", "Mighty", "Modest", "Neat", "Nimble", "Noble", "Novel",
	"Peppy", "Plucky", "Polite", "Prime", "Proud", "Quick", "Quiet", "Rapid",
	"Regal", "Robust", "Rosy", "Royal", "Rustic", "Sage", "Serene", "Sharp",
	"Shiny", "Smart", "Snug", "Solid", "Spry", "Stellar", "Stout", "Sunny",
	"Swift", "Tidy", "Trusty", "Vivid", "Warm", "Wise", "Witty", "Zesty",
}

var animals = []string{
	"Alpaca", "Badger", "Bear", "Beaver", "Bison", "Bobcat", "Camel",
	"Cardinal", "Cheetah", "Chipmunk", "Condor", "Cougar", "Coyote", "Crane",
	"Cricket", "Dolphin", "Donkey", "Dove", "Duck", "Eagle", "Egret", "Elk",
	"Falcon", "Ferret", "Finch", "Fox", "Gazelle", "Gecko", "Gibbon",
	"Giraffe", "Gopher", "Grouse", "Hamster", "Hare", "Hawk", "Hedgehog",
	"Heron", "Hippo", "Ibex", "Iguana", "Jackal", "Jaguar", "Jay", "Kestrel",
	"Kitten", "Koala", "Lark", "Lemur", "Leopard", "Lion", "Llama", "Lynx",
	"Macaw", "Magpie", "Manatee", "Marmot", "Marten", "Meerkat", "Mink",
	"Moose", "Mouse", "Narwhal", "Newt", "Ocelot", "Orca", "Osprey", "Otter",
	"Owl", "Panda", "Panther", "Parrot", "Pelican", "Penguin", "Pigeon",
	"Pony", "Puffin", "Quail", "Rabbit", "Raccoon", "Raven", "Robin",
	"Salmon", "Seal", "Sparrow", "Squirrel", "Stork", "Swan", "Tapir",
	"Tiger", "Toucan", "Turtle", "Walrus", "Weasel", "Wolf", "Wombat",
	"Wren",
}
