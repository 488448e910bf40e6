package i18n

import (
	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	"golang.org/x/text/language"
)

var messages = map[apperrors.Code]map[language.Tag]string{
	apperrors.CodeUnknown: {
		language.AmericanEnglish:     "Unexpected error",
		language.BrazilianPortuguese: "Erro inesperado",
	},
	apperrors.CodeValueBlank: {
		language.AmericanEnglish:     "The string value is mandatory",
		language.BrazilianPortuguese: "O valor do texto é obrigatório",
	},
	apperrors.CodeValueInvalidFormat: {
		language.AmericanEnglish:     "The value must be a string between 1 and %[1]s characters long",
		language.BrazilianPortuguese: "O valor deve ser um texto com 1 a %[1]s caracteres",
	},
	apperrors.CodeInvalidPage: {
		language.AmericanEnglish:     "Invalid pagination parameter %[1]q",
		language.BrazilianPortuguese: "Parâmetro de paginação inválido %[1]q",
	},
	apperrors.CodeInvalidSort: {
		language.AmericanEnglish:     "Invalid sort parameter %[1]q",
		language.BrazilianPortuguese: "Parâmetro de ordenação inválido %[1]q",
	},
	apperrors.CodeInvalidID: {
		language.AmericanEnglish:     "Invalid item identifier %[1]q",
		language.BrazilianPortuguese: "Identificador de item inválido %[1]q",
	},
	apperrors.CodeMalformedRequest: {
		language.AmericanEnglish:     "The request body is not valid JSON",
		language.BrazilianPortuguese: "O corpo da requisição não é um JSON válido",
	},
	apperrors.CodeNotFound: {
		language.AmericanEnglish:     "The item was not found",
		language.BrazilianPortuguese: "O item não foi encontrado",
	},
	apperrors.CodeStorageFailure: {
		language.AmericanEnglish:     "The storage is unavailable, try again later",
		language.BrazilianPortuguese: "O armazenamento está indisponível, tente novamente mais tarde",
	},
}
