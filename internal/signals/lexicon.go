package signals

// defaultRules returns the built-in detection table. Terms are written
// pre-folded (lowercase, no diacritics); Detect folds the input the same
// way, so "não" matches "nao" and vice versa.
//
// The table is ordered: helper markers first, then the compound rules
// that require them.
func defaultRules() []Rule {
	return []Rule{
		{
			Signal: markerRepetition,
			Terms: []string{
				"de novo", "sempre", "outra vez", "mais uma vez",
				"toda vez", "novamente", "como sempre",
			},
		},
		{
			Signal: markerFamily,
			Terms: []string{
				"meu filho", "minha filha", "meus filhos", "meu marido",
				"minha esposa", "minha mulher", "meu pai", "minha mae",
				"meu irmao", "minha irma", "minha familia", "la em casa",
				"meu casamento", "meu esposo", "meus pais",
			},
		},
		{
			Signal: SignalGuidanceRequest,
			Terms: []string{
				"o que eu faco", "o que faco", "o que fazer",
				"o que devo fazer", "como lidar", "como agir",
				"me ajuda", "me ajude", "me orienta", "me oriente",
				"me aconselha", "preciso de um conselho",
				"preciso de ajuda", "me da uma direcao",
				"por onde comeco", "o que a biblia diz",
				"qual o caminho", "como faco para",
			},
		},
		{
			Signal: SignalRepetitionComplaint,
			Terms: []string{
				"voce ja disse", "voce ja falou", "ja falamos sobre",
				"voce so repete", "fica repetindo", "sempre a mesma resposta",
				"mesma coisa de novo", "voce nao responde",
				"de novo isso", "repetindo a mesma coisa",
			},
		},
		{
			Signal: SignalAmbivalence,
			Terms: []string{
				"nao sei se", "ao mesmo tempo", "por um lado",
				"por outro lado", "estou em duvida", "sera que",
				"as vezes sim", "as vezes nao", "nao tenho certeza",
				"uma parte de mim", "mas tambem", "nao sei o que pensar",
			},
		},
		{
			Signal: SignalDefensive,
			Terms: []string{
				"voce nao entende", "voce nao sabe", "nao e bem assim",
				"nao foi isso que eu disse", "esta me julgando",
				"ta me julgando", "deixa pra la", "nao quero falar sobre",
				"chega disso", "nao e da sua conta", "para de me",
			},
		},
		{
			Signal: SignalGuilt,
			Terms: []string{
				"a culpa e minha", "por minha culpa", "me sinto culpado",
				"me sinto culpada", "eu falhei", "nao mereco",
				"fiz tudo errado", "me arrependo", "sou um peso",
				"decepcionei", "deus nao me perdoa", "nao consigo me perdoar",
				"errei com", "sou um fracasso",
			},
		},
		{
			Signal: SignalDeepSuffering,
			Terms: []string{
				"nao aguento mais", "sem forcas", "no fundo do poco",
				"dor insuportavel", "sofrendo muito", "desespero",
				"vazio por dentro", "noites sem dormir", "so tristeza",
				"estou destruido", "estou destruida", "nao paro de chorar",
				"angustia", "sufocado", "sufocada",
			},
		},
		{
			Signal:   SignalRepetitiveGuilt,
			Requires: markerRepetition,
			Terms: []string{
				"culpa", "culpado", "culpada", "falhei", "errei",
				"pecado", "peco perdao",
			},
		},
		{
			Signal:   SignalFamilyImpotence,
			Requires: markerFamily,
			Terms: []string{
				"nao consigo", "nao sei mais o que fazer",
				"ja tentei de tudo", "nada funciona", "nao me escuta",
				"nao me ouve", "perdi o controle", "impotente",
				"minhas maos estao atadas", "fugiu do meu alcance",
			},
		},
		{
			Signal: SignalExplicitDespair,
			Terms: []string{
				"nao vejo saida", "sem saida", "sem esperanca",
				"perdi a esperanca", "nada faz sentido",
				"nao vejo mais sentido", "desisti de tudo",
				"nao tem mais jeito", "tudo perdido",
			},
		},
		{
			Signal: SignalSpiritualContext,
			Terms: []string{
				"deus", "jesus", "cristo", "senhor", "biblia",
				"versiculo", "fe", "igreja", "espirito santo",
				"evangelho", "salmo", "palavra de deus", "proposito de deus",
			},
		},
		{
			Signal: SignalHighSpiritualNeed,
			Terms: []string{
				"deus me abandonou", "cade deus", "onde esta deus",
				"minha fe acabou", "perdi a fe", "longe de deus",
				"deus nao me ouve", "deus esqueceu de mim",
				"sera que deus existe", "preciso de deus",
			},
		},
		{
			Signal: SignalInstitutional,
			Terms: []string{
				"falar com o pastor", "falar com um pastor",
				"falar com a pastora", "marcar uma visita",
				"aconselhamento presencial", "horario de culto",
				"horario dos cultos", "endereco da igreja", "batismo",
				"quero ser batizado", "quero ser batizada", "dizimo",
				"pequeno grupo", "celula", "secretaria da igreja",
				"agendar conversa",
			},
		},
		{
			Signal: SignalPrayerRequest,
			Terms: []string{
				"ore por mim", "ora por mim", "ore comigo", "ora comigo",
				"faca uma oracao", "faz uma oracao", "quero uma oracao",
				"pode orar", "preciso de oracao", "oracao pela minha",
				"oracao pelo meu",
			},
		},
		{
			Signal: SignalClosing,
			Terms: []string{
				"tchau", "ate mais", "ate amanha", "ate logo",
				"tenho que ir", "preciso ir", "fico por aqui",
				"boa noite", "ja vou", "obrigado por hoje",
				"obrigada por hoje", "valeu",
			},
		},
		{
			Signal: SignalAgreement,
			Terms: []string{
				"sim", "pode ser", "vou tentar", "combinado",
				"esta bem", "ta bom", "tudo bem", "concordo",
				"faz sentido", "amem", "vou fazer isso", "ok",
				"certo", "verdade", "isso mesmo",
			},
		},
	}
}
