package textnorm

// French stopword list, matching the vocabulary used when the training corpora
// were cleaned. Tokens are compared after lowercasing and punctuation removal.
var frenchStopwords = []string{
	"au", "aux", "avec", "ce", "ces", "cette", "dans", "de", "des", "du",
	"elle", "elles", "en", "et", "eux", "il", "ils", "je", "la", "le", "les",
	"leur", "leurs", "lui", "ma", "mais", "me", "mes", "moi", "mon", "ne",
	"nos", "notre", "nous", "on", "ou", "par", "pas", "pour", "qu", "que",
	"qui", "sa", "se", "ses", "son", "sur", "ta", "te", "tes", "toi", "ton",
	"tu", "un", "une", "vos", "votre", "vous", "y",
	"c", "d", "j", "l", "m", "n", "s", "t",
	"est", "sont", "suis", "es", "sommes", "etes", "etait", "etaient",
	"etre", "ete", "etant",
	"a", "ai", "as", "avons", "avez", "ont", "avait", "avaient", "avoir",
	"ayant", "eu",
	"fut", "soit", "sera", "seront", "serait",
	"plus", "moins", "tres", "peu", "tout", "tous", "toute", "toutes",
	"autre", "autres", "meme", "aussi", "alors", "ainsi", "comme", "donc",
	"or", "ni", "car", "si", "sans", "sous", "vers", "chez", "entre",
	"quand", "quel", "quelle", "quels", "quelles", "dont", "cela", "ceci",
}
