package ordering

// User-facing ledger and confirmation messages
const (
	MsgInvalidQuantity  = "Lo siento, la cantidad debe estar entre 1 y 100."
	MsgLineLimit        = "Lo siento, ya tienes %d %s(s) en tu pedido y el máximo por artículo es %d."
	MsgItemNotOnMenu    = "Lo siento, '%s' no está en nuestro menú. Por favor, verifica el menú e intenta de nuevo."
	MsgItemAdded        = "Has añadido %d %s(s) a tu pedido. Subtotal para este artículo: %s.\n\n"
	MsgItemRemoved      = "Se ha eliminado %s de tu pedido. El total actual es %s"
	MsgItemNotInOrder   = "%s no estaba en tu pedido."
	MsgQuantityUpdated  = "Se ha actualizado la cantidad de %s a %d. El total actual es %s"
	MsgEmptyOrder       = "No tienes ningún pedido en curso."
	MsgNothingToCancel  = "No hay ningún pedido para cancelar."
	MsgOrderCancelled   = "Tu pedido ha sido cancelado."
	MsgNothingToConfirm = "No hay ningún pedido para confirmar. ¿Quieres empezar uno nuevo?"
	MsgOrderConfirmed   = "¡Gracias por tu pedido! Ha sido confirmado y guardado. El total es %s"
	MsgConfirmFailed    = "Lo siento, no pudimos guardar tu pedido. Tu pedido sigue activo; por favor intenta confirmarlo de nuevo."

	MsgHowToOrder = "Para realizar un pedido, por favor sigue estos pasos:\n" +
		"1. Revisa nuestro menú\n" +
		"2. Dime qué items te gustaría ordenar\n" +
		"3. Proporciona tu dirección de entrega\n" +
		"4. Confirma tu pedido\n\n" +
		"¿Qué te gustaría ordenar?"
)
