package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	// Titles
	message.SetString(lang, "title.home", "Início")
	message.SetString(lang, "title.integrations", "Integrações")
	message.SetString(lang, "title.support", "Suporte")
	message.SetString(lang, "title.login", "Entrar")
	message.SetString(lang, "title.signup", "Criar conta")
	message.SetString(lang, "title.forgot_password", "Esqueci a senha")
	message.SetString(lang, "title.reset_password", "Redefinir senha")
	message.SetString(lang, "title.verify_2fa", "Verificação em duas etapas")
	message.SetString(lang, "title.verify_signup", "Confirme seu email")
	message.SetString(lang, "title.dashboard", "Painel")
	message.SetString(lang, "title.settings", "Configurações")
	message.SetString(lang, "title.documents", "Documentos")
	message.SetString(lang, "title.loading", "Carregando")
	message.SetString(lang, "title.not_found", "Página não encontrada")
	message.SetString(lang, "title.error", "Algo deu errado")

	// Navigation
	message.SetString(lang, "nav.home", "Início")
	message.SetString(lang, "nav.integrations", "Integrações")
	message.SetString(lang, "nav.support", "Suporte")
	message.SetString(lang, "nav.login", "Entrar")
	message.SetString(lang, "nav.signup", "Criar conta")
	message.SetString(lang, "nav.dashboard", "Painel")
	message.SetString(lang, "nav.documents", "Documentos")
	message.SetString(lang, "nav.settings", "Configurações")
	message.SetString(lang, "nav.logout", "Sair")
	message.SetString(lang, "nav.lang_en", "EN")
	message.SetString(lang, "nav.lang_pt_br", "PT-BR")

	// Public pages
	message.SetString(lang, "home.heading", "Suas contas, conciliadas.")
	message.SetString(lang, "home.tagline", "Conecte suas contas, envie documentos e mantenha todos os livros em um só lugar.")
	message.SetString(lang, "home.cta", "Começar")
	message.SetString(lang, "integrations.heading", "Integrações")
	message.SetString(lang, "integrations.body", "Importe extratos do seu banco e das suas ferramentas contábeis.")
	message.SetString(lang, "support.heading", "Suporte")
	message.SetString(lang, "support.body", "Dúvidas sobre sua conta? Nossa equipe responde em até um dia útil.")

	// Form fields
	message.SetString(lang, "form.email", "Email")
	message.SetString(lang, "form.password", "Senha")
	message.SetString(lang, "form.confirm_password", "Confirme a senha")
	message.SetString(lang, "form.full_name", "Nome completo")
	message.SetString(lang, "form.current_password", "Senha atual")
	message.SetString(lang, "form.new_password", "Nova senha")
	message.SetString(lang, "form.code", "Código de verificação")

	// Auth pages
	message.SetString(lang, "login.heading", "Entre na sua conta")
	message.SetString(lang, "login.submit", "Entrar")
	message.SetString(lang, "login.forgot_link", "Esqueceu sua senha?")
	message.SetString(lang, "login.signup_link", "Novo por aqui? Crie uma conta")
	message.SetString(lang, "signup.heading", "Crie sua conta")
	message.SetString(lang, "signup.submit", "Criar conta")
	message.SetString(lang, "signup.login_link", "Já tem uma conta? Entre")
	message.SetString(lang, "forgot.heading", "Redefina sua senha")
	message.SetString(lang, "forgot.body", "Informe seu email e enviaremos um link de redefinição.")
	message.SetString(lang, "forgot.submit", "Enviar link")
	message.SetString(lang, "forgot.login_link", "Voltar para entrar")
	message.SetString(lang, "reset.heading", "Escolha uma nova senha")
	message.SetString(lang, "reset.submit", "Redefinir senha")
	message.SetString(lang, "verify_2fa.heading", "Verificação em duas etapas")
	message.SetString(lang, "verify_2fa.body", "Digite o código de 6 dígitos do seu aplicativo autenticador.")
	message.SetString(lang, "verify_2fa.submit", "Verificar")
	message.SetString(lang, "verify_signup.heading", "Confirme seu email")
	message.SetString(lang, "verify_signup.body", "Enviamos um código de 6 dígitos para %s.")
	message.SetString(lang, "verify_signup.submit", "Confirmar email")
	message.SetString(lang, "verify_signup.resend", "Enviar novo código")

	// Account pages
	message.SetString(lang, "dashboard.heading", "Bem-vindo, %s")
	message.SetString(lang, "dashboard.body", "Seu espaço de trabalho está pronto.")
	message.SetString(lang, "settings.heading", "Configurações")
	message.SetString(lang, "settings.profile.heading", "Perfil")
	message.SetString(lang, "settings.profile.submit", "Salvar perfil")
	message.SetString(lang, "settings.password.heading", "Senha")
	message.SetString(lang, "settings.password.submit", "Alterar senha")
	message.SetString(lang, "settings.two_fa.enabled", "A verificação em duas etapas está ativada.")
	message.SetString(lang, "settings.two_fa.disabled", "A verificação em duas etapas está desativada.")
	message.SetString(lang, "settings.two_fa.heading", "Verificação em duas etapas")
	message.SetString(lang, "settings.two_fa.setup", "Configurar verificação em duas etapas")
	message.SetString(lang, "settings.two_fa.instructions", "Adicione esta conta ao seu aplicativo autenticador com o link ou a chave secreta abaixo e digite o código de 6 dígitos exibido.")
	message.SetString(lang, "settings.two_fa.open_app", "Abrir no aplicativo autenticador")
	message.SetString(lang, "settings.two_fa.secret", "Chave secreta")
	message.SetString(lang, "settings.two_fa.verify", "Verificar e ativar")
	message.SetString(lang, "settings.two_fa.disable", "Desativar verificação em duas etapas")
	message.SetString(lang, "settings.delete.heading", "Excluir conta")
	message.SetString(lang, "settings.delete.body", "Exclua permanentemente sua conta e todos os dados associados. Esta ação não pode ser desfeita.")
	message.SetString(lang, "settings.delete.confirm", "Entendo que minha conta será excluída permanentemente")
	message.SetString(lang, "settings.delete.submit", "Excluir conta")
	message.SetString(lang, "documents.heading", "Documentos")
	message.SetString(lang, "documents.empty", "Nenhum documento ainda.")

	// Loading placeholder
	message.SetString(lang, "loading.message", "Carregando sua conta...")
	message.SetString(lang, "loading.retry", "Tentar novamente")

	// Errors
	message.SetString(lang, "error.session_expired", "Sua sessão expirou. Entre novamente.")
	message.SetString(lang, "error.rate_limited", "Muitas solicitações. Aguarde um momento e tente novamente.")
	message.SetString(lang, "error.unavailable", "O serviço está indisponível no momento. Tente novamente em breve.")
	message.SetString(lang, "error.generic", "Algo deu errado. Tente novamente.")
	message.SetString(lang, "error.not_found", "Não encontramos essa página.")
	message.SetString(lang, "error.forbidden_origin", "Não foi possível verificar esta solicitação. Recarregue a página e tente novamente.")
	message.SetString(lang, "error.reset_link", "Este link de redefinição é inválido ou está incompleto.")
	message.SetString(lang, "error.two_factor_setup", "A configuração da verificação em duas etapas expirou. Comece novamente.")
	message.SetString(lang, "error.back_home", "Voltar ao início")

	// Notices
	message.SetString(lang, "notice.signed_out", "Você saiu da sua conta.")
	message.SetString(lang, "notice.code_resent", "Um novo código de verificação foi enviado.")
	message.SetString(lang, "notice.reset_link_sent", "Se esse endereço tiver uma conta, um link de redefinição está a caminho.")
	message.SetString(lang, "notice.password_reset", "Sua senha foi redefinida. Entre novamente.")
	message.SetString(lang, "notice.email_verified", "Seu email foi confirmado.")
	message.SetString(lang, "notice.profile_updated", "Perfil salvo.")
	message.SetString(lang, "notice.password_changed", "Senha alterada.")
	message.SetString(lang, "notice.two_factor_enabled", "Verificação em duas etapas ativada.")
	message.SetString(lang, "notice.two_factor_disabled", "Verificação em duas etapas desativada.")
	message.SetString(lang, "notice.account_deleted", "Sua conta foi excluída.")

	// Validation
	message.SetString(lang, "validation.required", "Este campo é obrigatório")
	message.SetString(lang, "validation.email_format", "Formato de email inválido")
	message.SetString(lang, "validation.full_name", "O nome completo deve ter ao menos 2 palavras com no mínimo 2 caracteres cada")
	message.SetString(lang, "validation.password_length", "A senha deve ter pelo menos 8 caracteres")
	message.SetString(lang, "validation.password_mismatch", "As senhas não coincidem")
	message.SetString(lang, "validation.code", "O código de verificação deve ter 6 dígitos")
	message.SetString(lang, "validation.delete_confirm", "Confirme que deseja excluir sua conta")
}
