// Package i18n is the es/en message catalog. Spanish is the product default;
// English entries are the fallback for keys missing from the active language.
package i18n

import "strings"

// Key is the kv-store key persisting the selected language code.
const Key = "sonsoles.language"

const DefaultLanguage = "es"

func Supported(lang string) bool {
	return lang == "es" || lang == "en"
}

type Translator struct {
	lang string
}

func New(lang string) *Translator {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !Supported(lang) {
		lang = DefaultLanguage
	}
	return &Translator{lang: lang}
}

func (t *Translator) Lang() string { return t.lang }

// T resolves key in the active language, falling back to English, then to
// the key itself. args are name/value pairs substituted into {{name}} slots.
func (t *Translator) T(key string, args ...string) string {
	msg, ok := messages[t.lang][key]
	if !ok {
		msg, ok = messages["en"][key]
	}
	if !ok {
		return key
	}
	for i := 0; i+1 < len(args); i += 2 {
		msg = strings.ReplaceAll(msg, "{{"+args[i]+"}}", args[i+1])
	}
	return msg
}

var messages = map[string]map[string]string{
	"en": {
		"app.title":   "Cleaning Tasks",
		"app.welcome": "Welcome, {{name}}",
		"app.logout":  "Logout",

		"login.title":          "Cleaner Login",
		"login.phone":          "Phone Number",
		"login.button":         "Login",
		"login.error.notFound": "Phone number not found or inactive",
		"login.error.failed":   "Login failed. Please try again.",

		"loading.default":    "Loading...",
		"loading.tasks":      "Loading tasks...",
		"loading.refreshing": "Refreshing tasks...",
		"loading.updateTask": "Updating task status...",
		"loading.comments":   "Loading comments...",
		"loading.sending":    "Sending comment...",
		"loading.products":   "Loading products...",
		"loading.completing": "Completing task...",

		"tasks.title":        "Your Tasks",
		"tasks.noTasks":      "No tasks assigned",
		"tasks.noPending":    "No pending tasks",
		"tasks.noConfirmed":  "No confirmed tasks",
		"tasks.tryAgain":     "Try Again",
		"tasks.error.load":   "Failed to load tasks. Please try again.",
		"tasks.error.update": "Failed to update task. Please try again.",
		"tasks.filter.pending":   "Pending",
		"tasks.filter.confirmed": "Confirmed",
		"tasks.filter.all":       "All",

		"status.URGENT":    "Urgent - Not Assigned",
		"status.ASSIGNED":  "Awaiting Response",
		"status.CONFIRMED": "Confirmed",
		"status.REJECTED":  "Rejected",
		"status.TENTATIVE": "Alternative Time Proposed",
		"status.COMPLETED": "Completed",

		"task.respond": "Respond to Task",
		"task.confirm": "Confirm",
		"task.reject":  "Reject",
		"task.propose": "Propose Time",
		"task.begin":   "Begin Task",
		"task.comments": "View Comments",

		"response.comments":    "Comments (optional)",
		"response.suggestTime": "Suggest alternative time (optional)",

		"comments.noComments":  "No comments yet",
		"comments.placeholder": "Write a comment...",
		"comments.send":        "Send",
		"comments.empty":       "Comment cannot be empty",
		"comments.type.INITIAL":      "Initial Note",
		"comments.type.CONFIRMATION": "Confirmation",
		"comments.type.REJECTION":    "Rejection",
		"comments.type.PROPOSAL":     "Proposal",
		"comments.type.GENERAL":      "Comment",

		"execution.phase.start":    "Ready to Start",
		"execution.phase.progress": "In Progress",
		"execution.phase.end":      "Task Completed",
		"execution.start":          "Start Task",
		"execution.finish":         "Finish Task",
		"execution.complete":       "Complete Task",
		"execution.startTime":      "Start Time",
		"execution.endTime":        "End Time",
		"execution.duration":       "Duration",
		"execution.comments":       "Final Comments",
		"execution.products":       "Products Used",
		"execution.productsError":  "Failed to load products",
		"execution.productsNone":   "No products available",
		"execution.error.complete": "Failed to complete task",

		"common.back":    "Back",
		"common.cancel":  "Cancel",
		"common.refresh": "Refresh",

		"session.expired": "Session expired, please log in again",
		"session.welcome": "Welcome back, {{name}}!",
	},
	"es": {
		"app.title":   "Tareas de Limpieza",
		"app.welcome": "Bienvenido, {{name}}",
		"app.logout":  "Cerrar Sesión",

		"login.title":          "Ingreso de Limpiador",
		"login.phone":          "Número de Teléfono",
		"login.button":         "Ingresar",
		"login.error.notFound": "Número de teléfono no encontrado o inactivo",
		"login.error.failed":   "Error de ingreso. Por favor intente nuevamente.",

		"loading.default":    "Cargando...",
		"loading.tasks":      "Cargando tareas...",
		"loading.refreshing": "Actualizando tareas...",
		"loading.updateTask": "Actualizando estado de tarea...",
		"loading.comments":   "Cargando comentarios...",
		"loading.sending":    "Enviando comentario...",
		"loading.products":   "Cargando productos...",
		"loading.completing": "Completando tarea...",

		"tasks.title":        "Tus Tareas",
		"tasks.noTasks":      "No hay tareas asignadas",
		"tasks.noPending":    "No hay tareas pendientes",
		"tasks.noConfirmed":  "No hay tareas confirmadas",
		"tasks.tryAgain":     "Intentar Nuevamente",
		"tasks.error.load":   "Error al cargar tareas. Por favor intente nuevamente.",
		"tasks.error.update": "Error al actualizar tarea. Por favor intente nuevamente.",
		"tasks.filter.pending":   "Pendientes",
		"tasks.filter.confirmed": "Confirmadas",
		"tasks.filter.all":       "Todas",

		"status.URGENT":    "Urgente - Sin Asignar",
		"status.ASSIGNED":  "Esperando Confirmación",
		"status.CONFIRMED": "Confirmado",
		"status.REJECTED":  "Rechazado",
		"status.TENTATIVE": "Horario Alternativo Propuesto",
		"status.COMPLETED": "Completado",

		"task.respond": "Responder a Tarea",
		"task.confirm": "Confirmar",
		"task.reject":  "Rechazar",
		"task.propose": "Proponer Horario",
		"task.begin":   "Comenzar Tarea",
		"task.comments": "Ver Comentarios",

		"response.comments":    "Comentarios (opcional)",
		"response.suggestTime": "Sugerir horario alternativo (opcional)",

		"comments.noComments":  "No hay comentarios todavía",
		"comments.placeholder": "Escribe un comentario...",
		"comments.send":        "Enviar",
		"comments.empty":       "El comentario no puede estar vacío",
		"comments.type.INITIAL":      "Nota Inicial",
		"comments.type.CONFIRMATION": "Confirmación",
		"comments.type.REJECTION":    "Rechazo",
		"comments.type.PROPOSAL":     "Propuesta",
		"comments.type.GENERAL":      "Comentario",

		"execution.phase.start":    "Listo para Comenzar",
		"execution.phase.progress": "En Progreso",
		"execution.phase.end":      "Tarea Completada",
		"execution.start":          "Iniciar Tarea",
		"execution.finish":         "Terminar Tarea",
		"execution.complete":       "Completar Tarea",
		"execution.startTime":      "Hora de Inicio",
		"execution.endTime":        "Hora de Fin",
		"execution.duration":       "Duración",
		"execution.comments":       "Comentarios Finales",
		"execution.products":       "Productos Utilizados",
		"execution.productsError":  "Error al cargar productos",
		"execution.productsNone":   "No hay productos disponibles",
		"execution.error.complete": "Error al completar tarea",

		"common.back":    "Atrás",
		"common.cancel":  "Cancelar",
		"common.refresh": "Actualizar",

		"session.expired": "Sesión expirada, por favor inicie sesión nuevamente",
		"session.welcome": "¡Bienvenido de nuevo, {{name}}!",
	},
}
